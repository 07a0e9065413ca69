package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScan_FiltersGeneratedAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"button.ts":                  "export class Button {}\n",
		"auth/login.tsx":             "export const Login = () => null;\n",
		"auth/index.ts":              "export * from './login';\n",
		"types.d.ts":                 "declare const x: number;\n",
		"README.md":                  "docs\n",
		"node_modules/react/main.ts": "export {};\n",
		"dist/bundle.ts":             "export {};\n",
	})

	scanner := NewScanner(DefaultConfig(root), nil)
	files, err := scanner.Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{"auth/login.tsx", "button.ts"}, relPaths(t, root, files))
}

func TestScan_ExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts":  "export {};\n",
		"b.tsx": "export {};\n",
		"c.js":  "export {};\n",
	})

	cfg := DefaultConfig(root)
	cfg.Extensions = []string{".ts"}

	files, err := NewScanner(cfg, nil).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ts"}, relPaths(t, root, files))
}

func TestScan_IncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/button.ts":  "export {};\n",
		"src/user.ts":    "export {};\n",
		"tools/gen.ts":   "export {};\n",
		"src/sub/mod.ts": "export {};\n",
	})

	cfg := DefaultConfig(root)
	cfg.Include = []string{"src/**"}

	files, err := NewScanner(cfg, nil).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/button.ts", "src/sub/mod.ts", "src/user.ts"},
		relPaths(t, root, files))
}

func TestScan_CustomBarrelNameSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"barrel.ts": "export * from './widget';\n",
		"widget.ts": "export class Widget {}\n",
		"index.ts":  "export const kept = 1;\n",
	})

	cfg := DefaultConfig(root)
	cfg.BarrelName = "barrel.ts"

	files, err := NewScanner(cfg, nil).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"index.ts", "widget.ts"}, relPaths(t, root, files))
}

func TestScan_InvalidPatternRejected(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Exclude = []string{"[invalid"}

	_, err := NewScanner(cfg, nil).Scan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}
