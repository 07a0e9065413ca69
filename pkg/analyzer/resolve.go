package analyzer

import (
	"path/filepath"
)

// resolutionSuffixes are tried, in order, when a specifier has no
// extension or names a directory.
var resolutionSuffixes = []string{
	"", ".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// ResolveImport resolves a relative module specifier against the importing
// file's directory, using exists to probe candidates. Returns "" when no
// candidate matches (external package or file outside the scanned tree).
//
// Resolution is deliberately minimal: relative specifiers only, extension
// and index-file probing, no node_modules or tsconfig path mapping.
func ResolveImport(fromFile, source string, exists func(string) bool) string {
	if isExternalSpecifier(source) {
		return ""
	}

	base := filepath.Clean(filepath.Join(filepath.Dir(fromFile), source))

	for _, suffix := range resolutionSuffixes {
		candidate := base + suffix
		if exists(candidate) {
			return candidate
		}
	}

	return ""
}
