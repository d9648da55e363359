package builtins

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Ls lists directory contents, supporting -a (show dotfiles) and -l
// (long listing with mode, size, and modification time).
type Ls struct{}

func (Ls) Name() string     { return "ls" }
func (Ls) IsExternal() bool { return false }

func (Ls) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)
	all := fs.BoolP("all", "a", false, "do not ignore entries starting with .")
	long := fs.BoolP("long", "l", false, "use a long listing format")
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return value.Value{}, errors.Wrap(errors.ErrIO, "ls: parsing flags", err)
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	for i, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return value.Value{}, errors.Wrap(errors.ErrIO, "ls: "+path, err)
		}
		if !info.IsDir() {
			printEntry(cio.Stdout, path, info, *long)
			continue
		}
		if len(paths) > 1 {
			if i > 0 {
				fmt.Fprintln(cio.Stdout)
			}
			fmt.Fprintf(cio.Stdout, "%s:\n", path)
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return value.Value{}, errors.Wrap(errors.ErrIO, "ls: "+path, err)
		}
		sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })
		for _, entry := range entries {
			if !*all && strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			entryInfo, err := entry.Info()
			if err != nil {
				fmt.Fprintf(cio.Stderr, "ls: cannot access %q: %v\n", entry.Name(), err)
				continue
			}
			printEntry(cio.Stdout, entry.Name(), entryInfo, *long)
		}
	}
	return value.Int(0), nil
}

func printEntry(out io.Writer, name string, info os.FileInfo, long bool) {
	if !long {
		fmt.Fprintln(out, name)
		return
	}
	fmt.Fprintf(out, "%s %12d %s %s\n", info.Mode().String(), info.Size(), info.ModTime().Format("Jan 02 15:04"), name)
}
