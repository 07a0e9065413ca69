package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

func setupAnalyzer(_ *testing.T) *Analyzer {
	pm := parser.NewManager(nil)
	qm := queries.NewManager(pm, nil)
	return New(pm, qm, nil)
}

func analyze(t *testing.T, path, source string) *FileAnalysis {
	t.Helper()
	fa, err := setupAnalyzer(t).AnalyzeFile(path, []byte(source))
	require.NoError(t, err)
	require.NotNil(t, fa)
	return fa
}

func findExport(fa *FileAnalysis, name string) *ExportRecord {
	for i := range fa.Exports {
		if fa.Exports[i].Name == name {
			return &fa.Exports[i]
		}
	}
	return nil
}

func TestAnalyzeFile_NamedExports(t *testing.T) {
	fa := analyze(t, "/src/auth.service.ts", `
export class AuthService {}
export const authToken = 'abc';
export function login() {}
export interface Session { id: string }
export type SessionId = string;
export enum Role { Admin, User }
`)

	cases := []struct {
		name     string
		kind     ExportKind
		typeOnly bool
	}{
		{"AuthService", ExportNamedValue, false},
		{"authToken", ExportNamedValue, false},
		{"login", ExportNamedValue, false},
		{"Session", ExportNamedType, true},
		{"SessionId", ExportNamedType, true},
		{"Role", ExportNamedValue, false},
	}

	for _, tc := range cases {
		rec := findExport(fa, tc.name)
		require.NotNil(t, rec, "export %s not found", tc.name)
		assert.Equal(t, tc.kind, rec.Kind, tc.name)
		assert.Equal(t, tc.typeOnly, rec.IsTypeOnly, tc.name)
	}
}

func TestAnalyzeFile_DefaultKindFromDeclaration(t *testing.T) {
	fa := analyze(t, "/src/button.ts", `
class Button {}
export default Button;
`)

	def := fa.DefaultExport()
	require.NotNil(t, def)
	assert.Equal(t, "Button", def.Name)
	assert.False(t, def.IsTypeOnly, "class default is value-bearing")
}

func TestAnalyzeFile_DefaultFromInterface(t *testing.T) {
	fa := analyze(t, "/src/props.ts", `
interface Props { label: string }
export default Props;
`)

	def := fa.DefaultExport()
	require.NotNil(t, def)
	assert.Equal(t, "Props", def.Name)
	assert.True(t, def.IsTypeOnly)
}

func TestAnalyzeFile_ExportClauseAndReexports(t *testing.T) {
	fa := analyze(t, "/src/index-helpers.ts", `
const helperA = 1;
const helperB = 2;
export { helperA, helperB as b };
export { Widget } from './widget';
export * from './models';
export type * as shapes from './shapes';
`)

	a := findExport(fa, "helperA")
	require.NotNil(t, a)
	assert.Equal(t, ExportNamedValue, a.Kind)

	b := findExport(fa, "b")
	require.NotNil(t, b, "alias is the external name")
	assert.Nil(t, findExport(fa, "helperB"))

	widget := findExport(fa, "Widget")
	require.NotNil(t, widget)
	assert.Equal(t, ExportReexport, widget.Kind)
	assert.Equal(t, "./widget", widget.Source)

	wildcard := findExport(fa, "*")
	require.NotNil(t, wildcard)
	assert.True(t, wildcard.IsWildcard)
	assert.Equal(t, "./models", wildcard.Source)

	shapes := findExport(fa, "shapes")
	require.NotNil(t, shapes)
	assert.Equal(t, ExportReexport, shapes.Kind)
	assert.True(t, shapes.IsTypeOnly)
}

func TestAnalyzeFile_UnresolvedDefaultIsValue(t *testing.T) {
	fa := analyze(t, "/src/mystery.ts", `export default somethingImported;`)

	def := fa.DefaultExport()
	require.NotNil(t, def)
	assert.False(t, def.IsTypeOnly, "unknown default must never become type-only")
}

func TestAnalyzeFile_Imports(t *testing.T) {
	fa := analyze(t, "/src/page.tsx", `
import React from 'react';
import { useState, useEffect as effect } from 'react';
import type { User } from './models/user';
import * as api from './api';
import { type Config, loadConfig } from './config';
`)

	require.Len(t, fa.Imports, 5)

	react := fa.Imports[0]
	assert.Equal(t, "react", react.Source)
	assert.True(t, react.IsExternal)
	require.Len(t, react.Bindings, 1)
	assert.Equal(t, "React", react.Bindings[0].Local)
	assert.Equal(t, "default", react.Bindings[0].Imported)

	hooks := fa.Imports[1]
	require.Len(t, hooks.Bindings, 2)
	assert.Equal(t, "useState", hooks.Bindings[0].Local)
	assert.Equal(t, "effect", hooks.Bindings[1].Local)
	assert.Equal(t, "useEffect", hooks.Bindings[1].Imported)

	user := fa.Imports[2]
	assert.True(t, user.IsTypeOnly)
	assert.False(t, user.IsExternal)
	require.Len(t, user.Bindings, 1)
	assert.True(t, user.Bindings[0].IsTypeOnly)

	api := fa.Imports[3]
	require.Len(t, api.Bindings, 1)
	assert.Equal(t, "*", api.Bindings[0].Imported)
	assert.Equal(t, "api", api.Bindings[0].Local)

	config := fa.Imports[4]
	require.Len(t, config.Bindings, 2)
	// specifier order is preserved
	assert.Equal(t, "Config", config.Bindings[0].Local)
	assert.True(t, config.Bindings[0].IsTypeOnly)
	assert.Equal(t, "loadConfig", config.Bindings[1].Local)
	assert.False(t, config.Bindings[1].IsTypeOnly)
}

func TestAnalyzeFile_ImportStatementOffsets(t *testing.T) {
	source := `import { a } from './a';
const x = a;
`
	fa := analyze(t, "/src/offsets.ts", source)

	require.Len(t, fa.Imports, 1)
	imp := fa.Imports[0]
	assert.Equal(t, "import { a } from './a';", source[imp.StartByte:imp.EndByte])
	assert.Equal(t, 1, imp.StartLine)
}

func TestAnalyzeFile_Declarations(t *testing.T) {
	fa := analyze(t, "/src/decls.ts", `
const baseThemes = ['light', 'dark'];
let counter = 0;
function helper() {}
class Service {}
interface Options {}
type Alias = string;
export const visible = true;
`)

	base := fa.Declaration("baseThemes")
	require.NotNil(t, base)
	assert.Equal(t, DeclConst, base.Kind)
	assert.False(t, base.Exported)

	visible := fa.Declaration("visible")
	require.NotNil(t, visible)
	assert.True(t, visible.Exported)

	require.NotNil(t, fa.Declaration("helper"))
	require.NotNil(t, fa.Declaration("Service"))
	require.NotNil(t, fa.Declaration("Options"))
	assert.True(t, fa.Declaration("Options").Kind.IsTypeOnly())
}

func TestAnalyzeFile_StableExportOrder(t *testing.T) {
	first := analyze(t, "/src/one.ts", "export const b = 1;\nexport const a = 2;\n")
	second := analyze(t, "/src/two.ts", "export const a = 2;\nexport const b = 1;\n")

	require.Len(t, first.Exports, 2)
	require.Len(t, second.Exports, 2)
	assert.Equal(t, first.Exports[0].Name, second.Exports[0].Name)
	assert.Equal(t, first.Exports[1].Name, second.Exports[1].Name)
}

func TestAnalyzeFile_UnsupportedExtension(t *testing.T) {
	_, err := setupAnalyzer(t).AnalyzeFile("/src/readme.md", []byte("# hi"))
	assert.Error(t, err)
}

func TestResolveImport(t *testing.T) {
	tree := map[string]bool{
		"/src/models/user.ts": true,
		"/src/api/index.ts":   true,
		"/src/app.tsx":        true,
	}
	exists := func(p string) bool { return tree[p] }

	assert.Equal(t, "/src/models/user.ts", ResolveImport("/src/page.ts", "./models/user", exists))
	assert.Equal(t, "/src/api/index.ts", ResolveImport("/src/page.ts", "./api", exists))
	assert.Equal(t, "/src/app.tsx", ResolveImport("/src/components/nav.ts", "../app", exists))
	assert.Equal(t, "", ResolveImport("/src/page.ts", "react", exists))
	assert.Equal(t, "", ResolveImport("/src/page.ts", "./missing", exists))
}
