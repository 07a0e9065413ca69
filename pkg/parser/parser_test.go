package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeScript(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	source := []byte("export interface User { id: string }\nconst x: number = 1;\n")
	tree, err := manager.Parse(source, LanguageTypeScript, false)
	require.NoError(t, err, "Parse should succeed")
	require.NotNil(t, tree, "Tree should not be nil")
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind(), "Root should be a program node")
	assert.False(t, root.HasError())
}

func TestParseTSX(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	source := []byte("export const App = () => <div>hello</div>;\n")
	tree, err := manager.Parse(source, LanguageTypeScript, true)
	require.NoError(t, err, "Parse should succeed")
	require.NotNil(t, tree, "Tree should not be nil")
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())

	// TSX should parse JSX elements
	assert.Contains(t, root.ToSexp(), "jsx_element", "Should contain JSX elements")
}

func TestParseJavaScript(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	source := []byte("export function add(a, b) { return a + b; }\n")
	tree, err := manager.Parse(source, LanguageJavaScript, false)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	assert.Equal(t, "program", tree.RootNode().Kind())
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	_, err := manager.Parse([]byte("x"), LanguageUnknown, false)
	require.Error(t, err)
}

func TestParseFile(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	testCases := []struct {
		fileName string
		source   string
	}{
		{"button.ts", "export class Button {}\n"},
		{"app.tsx", "export const App = () => <main/>;\n"},
		{"legacy.js", "module.exports = {};\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.fileName, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte(tc.source), tc.fileName)
			require.NoError(t, err, "ParseFile should succeed for %s", tc.fileName)
			require.NotNil(t, tree)
			defer tree.Close()

			assert.Equal(t, "program", tree.RootNode().Kind())
		})
	}

	_, err := manager.ParseFile([]byte("body {}"), "styles.css")
	require.Error(t, err, "unsupported extensions are rejected")
}

func TestLazyInitialization(t *testing.T) {
	manager := NewManager(nil)
	defer manager.Close()

	// Initially, no parsers should be created
	stats := manager.GetStats()
	assert.Equal(t, 0, stats.ParsersCreated, "Should start with 0 parsers")

	source := []byte("const x: number = 1;")
	tree, err := manager.Parse(source, LanguageTypeScript, false)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated, "Should have created 1 parser")
	assert.Equal(t, 1, stats.ParsesCalled, "Should have called Parse once")

	// Parse again - same pool, same parser
	tree, err = manager.Parse(source, LanguageTypeScript, false)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated, "Parser should be reused")
	assert.Equal(t, 2, stats.ParsesCalled)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"button.ts", LanguageTypeScript},
		{"app.tsx", LanguageTypeScript},
		{"mod.mts", LanguageTypeScript},
		{"mod.cts", LanguageTypeScript},
		{"legacy.js", LanguageJavaScript},
		{"view.jsx", LanguageJavaScript},
		{"mod.mjs", LanguageJavaScript},
		{"mod.cjs", LanguageJavaScript},
		{"UPPER.TS", LanguageTypeScript},
		{"styles.css", LanguageUnknown},
		{"Makefile", LanguageUnknown},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, DetectLanguage(tc.path), "path %s", tc.path)
	}
}

func TestIsTSXFile(t *testing.T) {
	assert.True(t, IsTSXFile("app.tsx"))
	assert.True(t, IsTSXFile("App.TSX"))
	assert.False(t, IsTSXFile("app.ts"))
	assert.False(t, IsTSXFile("view.jsx"))
}

func TestIsDeclarationFile(t *testing.T) {
	assert.True(t, IsDeclarationFile("types.d.ts"))
	assert.True(t, IsDeclarationFile("types.d.mts"))
	assert.True(t, IsDeclarationFile("types.d.cts"))
	assert.False(t, IsDeclarationFile("types.ts"))
	assert.False(t, IsDeclarationFile("d.ts.backup"))
}
