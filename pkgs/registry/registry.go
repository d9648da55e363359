// Package registry implements the command registry: a
// process-wide name-to-handler map with PATH fallback that synthesizes
// an external-process handler on first successful lookup.
package registry

import (
	"io"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mysh-lang/mysh/internal/value"
)

// CommandIO bundles the scoped stdio streams a Command executes
// against, reflecting any `__stdout`/`__stderr` overrides in effect.
type CommandIO struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Command is the built-in/external command interface.
type Command interface {
	Name() string
	IsExternal() bool
	Exec(args []string, scope *value.Scope, io CommandIO) (value.Value, error)
}

// Registry is the process-wide, mutex-guarded name→Command map.
type Registry struct {
	mu       sync.Mutex
	commands map[string]Command
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd under its own Name(), performed once at startup by
// each built-in's package init or main wiring.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name()] = cmd
}

// IsCommand reports whether name resolves to a built-in or a PATH
// executable, without mutating the registry — used by pkgs/parser's
// Resolver to decide whether a bareword starts a Cmd node.
func (r *Registry) IsCommand(name string) bool {
	r.mu.Lock()
	if _, ok := r.commands[name]; ok {
		r.mu.Unlock()
		return true
	}
	r.mu.Unlock()
	_, err := exec.LookPath(name)
	return err == nil
}

// Lookup resolves name to a Command, registering a synthetic external
// handler on first successful PATH search so later lookups reuse it
// without another exec.LookPath call.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.Lock()
	if cmd, ok := r.commands[name]; ok {
		r.mu.Unlock()
		return cmd, true
	}
	r.mu.Unlock()

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, false
	}
	ext := &External{name: name, path: path}
	r.mu.Lock()
	r.commands[name] = ext
	r.mu.Unlock()
	return ext, true
}

// Names returns every registered command name, for suggestions and
// completion.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Suggest returns up to three fuzzy "did you mean" candidates for an
// unresolved command name, used by the registry's failure path to help
// a user who mistyped a command. Candidates are registered names within
// two edits of name, or containing it as a case-insensitive subsequence,
// ordered by edit distance.
func (r *Registry) Suggest(name string) []string {
	type candidate struct {
		name string
		dist int
	}
	var ranked []candidate
	for _, c := range r.Names() {
		d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c))
		if d <= 2 || fuzzy.MatchFold(name, c) {
			ranked = append(ranked, candidate{name: c, dist: d})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].dist < ranked[j].dist })
	var out []string
	for i, m := range ranked {
		if i >= 3 {
			break
		}
		out = append(out, m.name)
	}
	return out
}
