package registry

import (
	"log/slog"
	"sort"

	"github.com/gnana997/barrelgen/pkg/analyzer"
)

// Strategy is the resolution applied to one colliding name.
type Strategy string

const (
	// StrategyPlainWinner: a single contributor keeps the unqualified
	// binding.
	StrategyPlainWinner Strategy = "plain-winner"

	// StrategyQualified: one contributor keeps the plain binding, every
	// other contributor is exposed under a per-file namespace.
	StrategyQualified Strategy = "qualified"

	// StrategyForcedQualifyAll: no contributor gets a bare binding; all
	// are exposed only under their file-derived namespaces.
	StrategyForcedQualifyAll Strategy = "forced-qualify-all"
)

// Conflict is a registry name with two or more contributing files.
type Conflict struct {
	Name     string
	Files    []string
	Strategy Strategy

	// Winner is the file keeping the plain binding for StrategyQualified,
	// empty for StrategyForcedQualifyAll.
	Winner string
}

// FileMode is how a file's surface reaches the barrel.
type FileMode string

const (
	// FileModePlain re-exports the file wholesale: `export * from`.
	FileModePlain FileMode = "plain"

	// FileModeNamespaced exposes the file only under a namespace alias:
	// `export * as alias from`.
	FileModeNamespaced FileMode = "namespaced"
)

// FilePlan is the emission decision for one sibling file.
type FilePlan struct {
	Path string
	Mode FileMode

	// TypeOnly marks files whose entire export surface is erased at
	// compile time; their lines use `export type`.
	TypeOnly bool

	// DefaultAlias, when non-empty, asks the emitter for an
	// `export { default as DefaultAlias } from` line.
	DefaultAlias string

	// DefaultTypeOnly marks a type-level default (interface exported as
	// default via a declared identifier).
	DefaultTypeOnly bool
}

// Plan is the resolved barrel plan for one directory.
type Plan struct {
	Dir       string
	Files     []FilePlan
	Conflicts []Conflict
}

// Resolver assigns a resolution strategy to every colliding name and
// produces per-file emission plans.
type Resolver struct {
	// priority ranks file base names; earlier entries win plain bindings.
	// Files absent from the list rank after every listed file, tie-broken
	// by lexical base name order.
	priority map[string]int

	logger *slog.Logger
}

// NewResolver creates a Resolver. The priority slice lists file base names
// (extension stripped) in descending precedence; it may be empty.
func NewResolver(priority []string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}

	return &Resolver{priority: rank, logger: logger}
}

// Resolve computes the barrel plan for a directory.
//
// Winner selection runs to a fixpoint: a file that loses any conflict is
// demoted to namespaced emission, which withdraws all of its plain
// contributions and may deconflict other names, so the whole directory is
// re-evaluated until no demotion happens. A demoted file can never be a
// plain winner elsewhere.
func (r *Resolver) Resolve(dc *DirectoryContext) *Plan {
	reg := dc.Registry()

	namespaced := make(map[string]bool)
	for iter := 0; iter <= len(dc.Files); iter++ {
		demoted := r.demoteLosers(reg, namespaced)
		if !demoted {
			break
		}
	}

	plan := &Plan{Dir: dc.Dir}
	plan.Conflicts = r.collectConflicts(reg, namespaced)

	for _, fa := range dc.Files {
		if len(fa.Exports) == 0 {
			continue
		}

		fp := FilePlan{
			Path:     fa.Path,
			Mode:     FileModePlain,
			TypeOnly: allTypeOnly(fa.Exports),
		}
		if namespaced[fa.Path] {
			fp.Mode = FileModeNamespaced
		} else {
			fp.DefaultAlias, fp.DefaultTypeOnly = r.defaultAlias(reg, fa)
		}

		plan.Files = append(plan.Files, fp)
	}

	return plan
}

// demoteLosers runs one round over the names still contributed by plain
// files. It returns true when any file was demoted this round.
func (r *Resolver) demoteLosers(reg *ExportRegistry, namespaced map[string]bool) bool {
	demoted := false

	for _, name := range reg.SortedNames() {
		live := plainContributors(reg.Names[name], namespaced)
		if countFiles(live) < 2 {
			continue
		}

		if allContributorsTypeOnly(live) {
			winner := r.pickWinner(live)
			for _, c := range live {
				if c.Path != winner && !namespaced[c.Path] {
					namespaced[c.Path] = true
					demoted = true
				}
			}
			continue
		}

		// Mixed kinds, or identical value kinds with no precedence
		// signal: nobody keeps a bare binding.
		for _, c := range live {
			if !namespaced[c.Path] {
				namespaced[c.Path] = true
				demoted = true
			}
		}
	}

	return demoted
}

// collectConflicts reports every multi-file name with its final strategy.
func (r *Resolver) collectConflicts(reg *ExportRegistry, namespaced map[string]bool) []Conflict {
	var conflicts []Conflict

	for _, name := range reg.SortedNames() {
		contributors := reg.Names[name]
		if countFiles(contributors) < 2 {
			continue
		}

		files := contributorFiles(contributors)
		conflict := Conflict{Name: name, Files: files}

		winner := ""
		for _, c := range contributors {
			if !namespaced[c.Path] {
				winner = c.Path
				break
			}
		}

		if winner != "" {
			conflict.Strategy = StrategyQualified
			conflict.Winner = winner
		} else {
			conflict.Strategy = StrategyForcedQualifyAll
			r.logger.Warn("collision unresolved, qualifying all contributors",
				"name", name,
				"files", files)
		}

		conflicts = append(conflicts, conflict)
	}

	return conflicts
}

// defaultAlias decides whether the barrel gets a `default as Name` line
// for a plain file. The alias is suppressed when its name lost a conflict
// to another file.
func (r *Resolver) defaultAlias(reg *ExportRegistry, fa *analyzer.FileAnalysis) (string, bool) {
	for _, c := range reg.Names[firstDefaultName(fa)] {
		if c.Path == fa.Path && c.DefaultAlias {
			return c.Record.Name, c.Record.IsTypeOnly
		}
	}
	return "", false
}

// pickWinner orders contributors by priority rank then base name then
// path, and returns the first file.
func (r *Resolver) pickWinner(contributors []Contributor) string {
	paths := contributorFiles(contributors)

	sort.Slice(paths, func(i, j int) bool {
		ri, rj := r.rank(paths[i]), r.rank(paths[j])
		if ri != rj {
			return ri < rj
		}
		bi, bj := baseName(paths[i]), baseName(paths[j])
		if bi != bj {
			return bi < bj
		}
		return paths[i] < paths[j]
	})

	return paths[0]
}

func (r *Resolver) rank(path string) int {
	if rank, ok := r.priority[baseName(path)]; ok {
		return rank
	}
	return len(r.priority)
}

func firstDefaultName(fa *analyzer.FileAnalysis) string {
	if def := fa.DefaultExport(); def != nil {
		return def.Name
	}
	return ""
}

func plainContributors(contributors []Contributor, namespaced map[string]bool) []Contributor {
	var live []Contributor
	for _, c := range contributors {
		if !namespaced[c.Path] {
			live = append(live, c)
		}
	}
	return live
}

func countFiles(contributors []Contributor) int {
	seen := make(map[string]bool, len(contributors))
	for _, c := range contributors {
		seen[c.Path] = true
	}
	return len(seen)
}

func contributorFiles(contributors []Contributor) []string {
	seen := make(map[string]bool, len(contributors))
	var files []string
	for _, c := range contributors {
		if !seen[c.Path] {
			seen[c.Path] = true
			files = append(files, c.Path)
		}
	}
	sort.Strings(files)
	return files
}

func allContributorsTypeOnly(contributors []Contributor) bool {
	for _, c := range contributors {
		if !c.Record.IsTypeOnly {
			return false
		}
	}
	return true
}

func allTypeOnly(records []analyzer.ExportRecord) bool {
	for _, rec := range records {
		if !rec.IsTypeOnly {
			return false
		}
	}
	return true
}
