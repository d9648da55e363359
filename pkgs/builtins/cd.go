package builtins

import (
	"os"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Cd changes the process's working directory. With no arguments it goes
// to $HOME; with "-" it is a no-op (OLDPWD tracking is left to scripts
// via the environment, not built into the command).
type Cd struct{}

func (Cd) Name() string     { return "cd" }
func (Cd) IsExternal() bool { return false }

func (Cd) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if target == "-" {
		return value.Int(0), nil
	}
	if target == "" {
		if home, ok := scope.Lookup("HOME"); ok {
			target = home.Value.String()
		} else {
			target = os.Getenv("HOME")
		}
	}
	if err := os.Chdir(target); err != nil {
		return value.Value{}, errors.Wrap(errors.ErrIO, "cd: "+target, err)
	}
	return value.Int(0), nil
}
