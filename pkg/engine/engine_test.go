package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	eng, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_GeneratesBarrel(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"button.ts": "export class Button {}\n",
		"user.ts":   "export interface User { id: string }\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesAnalyzed)
	assert.Equal(t, 2, report.ExportsFound)
	assert.Equal(t, 1, report.BarrelsGenerated)
	assert.Equal(t, 0, report.ConflictsDetected)

	barrel := readFile(t, filepath.Join(root, "index.ts"))
	assert.Contains(t, barrel, "// Code generated by barrelgen. DO NOT EDIT.")
	assert.Contains(t, barrel, "export * from './button';")
	assert.Contains(t, barrel, "export type * from './user';")
}

func TestRun_SecondRunIsNoop(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"models.ts": "export interface User { id: string }\n",
		"main.ts":   "import { User } from './models';\nexport function load(): User { return { id: '1' }; }\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	first, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.True(t, first.Changed())

	second, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, second.Changed(), "a converged tree produces no further mutations")
	assert.Equal(t, 0, second.BarrelsGenerated)
	assert.Empty(t, second.FilesRewritten)
	assert.Empty(t, second.FilesPatched)
}

func TestRun_PatchesMissingExport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"util.ts": "function helper() {\n  return 1;\n}\n",
		"main.ts": "import { helper } from './util';\nhelper();\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.FilesPatched, 1)
	assert.Equal(t, filepath.Join(root, "util.ts"), report.FilesPatched[0])
	assert.Contains(t, readFile(t, filepath.Join(root, "util.ts")), "export { helper };")

	// The patched surface reaches the barrel in the same run.
	assert.Contains(t, readFile(t, filepath.Join(root, "index.ts")), "export * from './util';")
}

func TestRun_RewritesTypeOnlyImport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"models.ts": "export interface User { id: string }\n",
		"main.ts":   "import { User } from './models';\nexport function load(): User { return { id: '1' }; }\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.FilesRewritten, 1)
	assert.Contains(t, readFile(t, filepath.Join(root, "main.ts")),
		"import type { User } from './models';")
}

func TestRun_ReportsUnresolvedImport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"util.ts": "export function other() {}\n",
		"main.ts": "import { missing } from './util';\nmissing();\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.UnresolvedImports, 1)
	assert.Equal(t, "missing", report.UnresolvedImports[0].Name)
	assert.Equal(t, 1, report.ValidationErrors)
}

func TestRunDry_WritesNothing(t *testing.T) {
	root := t.TempDir()
	source := "import { User } from './models';\nexport function load(): User { return { id: '1' }; }\n"
	writeTree(t, root, map[string]string{
		"models.ts": "export interface User { id: string }\n",
		"main.ts":   source,
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.RunDry(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.True(t, report.Changed())
	assert.Equal(t, source, readFile(t, filepath.Join(root, "main.ts")))
	assert.NoFileExists(t, filepath.Join(root, "index.ts"))
}

func TestRun_ConflictForcesQualifiedAccess(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"alpha.ts": "export const format = () => 'a';\n",
		"beta.ts":  "export const format = () => 'b';\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "format", report.Conflicts[0].Name)

	barrel := readFile(t, filepath.Join(root, "index.ts"))
	assert.Contains(t, barrel, "export * as alpha from './alpha';")
	assert.Contains(t, barrel, "export * as beta from './beta';")
	assert.NotContains(t, barrel, "export * from")
}

func TestRun_PersistsJSONReport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget.ts": "export class Widget {}\n",
	})

	cfg := DefaultConfig(root)
	cfg.ReportPath = filepath.Join(root, "report.json")

	eng := newTestEngine(t, cfg)
	_, err := eng.Run(context.Background())
	require.NoError(t, err)

	var persisted Report
	require.NoError(t, json.Unmarshal([]byte(readFile(t, cfg.ReportPath)), &persisted))
	assert.Equal(t, 1, persisted.FilesAnalyzed)
	assert.Equal(t, 1, persisted.BarrelsGenerated)
}

func TestRun_NestedDirectoriesGetOwnBarrels(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"auth/login.ts":    "export function login() {}\n",
		"models/user.ts":   "export interface User { id: string }\n",
		"models/config.ts": "export type Config = { debug: boolean }\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.BarrelsGenerated)
	assert.FileExists(t, filepath.Join(root, "auth", "index.ts"))

	models := readFile(t, filepath.Join(root, "models", "index.ts"))
	assert.Contains(t, models, "export type * from './config';")
	assert.Contains(t, models, "export type * from './user';")
}

func TestAnalyzeFile_ServesFromIndexWhenFresh(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"widget.ts": "export class Widget {}\n",
	})
	path := filepath.Join(root, "widget.ts")

	eng := newTestEngine(t, DefaultConfig(root))

	first, err := eng.AnalyzeFile(path)
	require.NoError(t, err)
	second, err := eng.AnalyzeFile(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	eng.Invalidate(path)
	third, err := eng.AnalyzeFile(path)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, first.Analysis.Exports, third.Analysis.Exports)
}

func TestSnapshot_DoesNotMutate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"util.ts": "function helper() {}\n",
		"main.ts": "import { helper } from './util';\nhelper();\n",
	})

	eng := newTestEngine(t, DefaultConfig(root))
	states, err := eng.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, states, 2)
	assert.NotContains(t, readFile(t, filepath.Join(root, "util.ts")), "export")
	assert.NoFileExists(t, filepath.Join(root, "index.ts"))
}
