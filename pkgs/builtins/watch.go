package builtins

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Watch blocks on one or more paths and prints a line for each
// filesystem event until interrupted, wiring fsnotify as a command
// rather than a background subsystem so a script can compose it like
// any other blocking command (e.g. piped into a line-processing loop).
type Watch struct{}

func (Watch) Name() string     { return "watch" }
func (Watch) IsExternal() bool { return false }

func (Watch) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, errors.New(errors.ErrIO, "watch: at least one path required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return value.Value{}, errors.Wrap(errors.ErrIO, "watch: creating watcher", err)
	}
	defer watcher.Close()

	for _, path := range args {
		if err := watcher.Add(path); err != nil {
			return value.Value{}, errors.Wrap(errors.ErrIO, "watch: "+path, err)
		}
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case event, ok := <-watcher.Events:
			if !ok {
				return value.Int(0), nil
			}
			fmt.Fprintf(cio.Stdout, "%s %s\n", event.Op.String(), event.Name)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return value.Int(0), nil
			}
			fmt.Fprintf(cio.Stderr, "watch: %v\n", werr)
		}
		if value.Interrupted() {
			return value.Int(0), nil
		}
	}
}
