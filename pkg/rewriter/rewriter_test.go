package rewriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

// analyzeSource parses real source so statement offsets are exact, then
// marks every relative import as resolved.
func analyzeSource(t *testing.T, source string) *analyzer.FileAnalysis {
	t.Helper()

	pm := parser.NewManager(nil)
	qm := queries.NewManager(pm, nil)
	fa, err := analyzer.New(pm, qm, nil).AnalyzeFile("/src/file.ts", []byte(source))
	require.NoError(t, err)

	for i := range fa.Imports {
		if !fa.Imports[i].IsExternal {
			fa.Imports[i].ResolvedPath = "/resolved" + fa.Imports[i].Source
		}
	}
	return fa
}

func rewrite(t *testing.T, source string, verdicts map[string]classifier.Verdict) string {
	t.Helper()
	fa := analyzeSource(t, source)
	edits := New(nil).Plan(fa, verdicts)
	return string(Splice(fa.Source, edits))
}

func TestPlan_AllValueUnchanged(t *testing.T) {
	source := "import { login, logout } from './auth';\nlogin();\nlogout();\n"
	fa := analyzeSource(t, source)

	edits := New(nil).Plan(fa, map[string]classifier.Verdict{
		"login":  classifier.VerdictValue,
		"logout": classifier.VerdictValue,
	})

	assert.Empty(t, edits, "value-only statements stay byte-for-byte")
}

func TestPlan_AllTypeBecomesImportType(t *testing.T) {
	out := rewrite(t,
		"import { User, Role } from './models';\nlet u: User;\nlet r: Role;\n",
		map[string]classifier.Verdict{
			"User": classifier.VerdictTypeOnly,
			"Role": classifier.VerdictTypeOnly,
		})

	assert.Contains(t, out, "import type { Role, User } from './models';")
	assert.NotContains(t, out, "import { ")
}

func TestPlan_MixedSplitsStatement(t *testing.T) {
	out := rewrite(t,
		"import { login, User } from './auth';\nlogin();\nlet u: User;\n",
		map[string]classifier.Verdict{
			"login": classifier.VerdictValue,
			"User":  classifier.VerdictTypeOnly,
		})

	assert.Contains(t, out, "import { login } from './auth';")
	assert.Contains(t, out, "import type { User } from './auth';")
}

func TestPlan_AlreadyCanonicalTypeImportUnchanged(t *testing.T) {
	source := "import type { User } from './models';\nlet u: User;\n"
	fa := analyzeSource(t, source)

	edits := New(nil).Plan(fa, map[string]classifier.Verdict{
		"User": classifier.VerdictTypeOnly,
	})

	assert.Empty(t, edits)
}

func TestPlan_MatchingInlineTypeMarkerUnchanged(t *testing.T) {
	source := "import { type Config, loadConfig } from './config';\nloadConfig();\nlet c: Config;\n"
	out := rewrite(t, source, map[string]classifier.Verdict{
		"Config":     classifier.VerdictTypeOnly,
		"loadConfig": classifier.VerdictValue,
	})

	assert.Equal(t, source, out, "inline markers that already match stay as written")
}

func TestPlan_InlineMarkerDemotedSplits(t *testing.T) {
	out := rewrite(t,
		"import { type Config, loadConfig } from './config';\nloadConfig();\nnew Config();\n",
		map[string]classifier.Verdict{
			"Config":     classifier.VerdictValue,
			"loadConfig": classifier.VerdictValue,
		})

	assert.Contains(t, out, "import { Config, loadConfig } from './config';")
	assert.NotContains(t, out, "type Config")
}

func TestPlan_MergesDuplicateSpecifierLines(t *testing.T) {
	source := "import { login, User } from './auth';\n" +
		"import type { Session } from './auth';\n" +
		"login();\nlet u: User;\nlet s: Session;\n"

	out := rewrite(t, source, map[string]classifier.Verdict{
		"login": classifier.VerdictValue,
		"User":  classifier.VerdictTypeOnly,
	})

	assert.Contains(t, out, "import { login } from './auth';")
	assert.Contains(t, out, "import type { Session, User } from './auth';")
	assert.Equal(t, 2, countLinesContaining(out, "./auth"),
		"one module gets at most one value and one type line")
}

func TestPlan_ValueVerdictDemotesTypeImport(t *testing.T) {
	// The written form claims type-only but the name is used as a value;
	// runtime-required bindings must never stay type-only.
	out := rewrite(t,
		"import type { Widget } from './widget';\nnew Widget();\n",
		map[string]classifier.Verdict{
			"Widget": classifier.VerdictValue,
		})

	assert.Contains(t, out, "import { Widget } from './widget';")
	assert.NotContains(t, out, "import type")
}

func TestPlan_DefaultImportAllType(t *testing.T) {
	out := rewrite(t,
		"import Props from './props';\nlet p: Props;\n",
		map[string]classifier.Verdict{
			"Props": classifier.VerdictTypeOnly,
		})

	assert.Contains(t, out, "import type Props from './props';")
}

func TestPlan_DefaultPlusNamedAllTypeSplits(t *testing.T) {
	// import type cannot combine a default clause with named specifiers.
	out := rewrite(t,
		"import Props, { State } from './props';\nlet p: Props;\nlet s: State;\n",
		map[string]classifier.Verdict{
			"Props": classifier.VerdictTypeOnly,
			"State": classifier.VerdictTypeOnly,
		})

	assert.Contains(t, out, "import type Props from './props';")
	assert.Contains(t, out, "import type { State } from './props';")
}

func TestPlan_ExternalImportsUntouched(t *testing.T) {
	source := "import React from 'react';\nlet el: React.ReactNode;\n"
	fa := analyzeSource(t, source)

	edits := New(nil).Plan(fa, map[string]classifier.Verdict{
		"React": classifier.VerdictTypeOnly,
	})

	assert.Empty(t, edits, "only local-module imports are rewritten")
}

func TestPlan_UnverdictedBindingKeepsWrittenForm(t *testing.T) {
	source := "import { used, orphan } from './lib';\nused();\n"
	out := rewrite(t, source, map[string]classifier.Verdict{
		"used": classifier.VerdictValue,
	})

	assert.Equal(t, source, out)
}

func TestSplice_AppliesBackToFront(t *testing.T) {
	source := []byte("aaa bbb ccc")
	out := Splice(source, []Edit{
		{StartByte: 0, EndByte: 3, Replacement: "X"},
		{StartByte: 8, EndByte: 11, Replacement: "Y"},
	})
	assert.Equal(t, "X bbb Y", string(out))
}

func countLinesContaining(s, substr string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			count++
		}
	}
	return count
}
