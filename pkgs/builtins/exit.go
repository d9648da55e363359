package builtins

import (
	"os"
	"strconv"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Exit terminates the process immediately with the given code (0 if
// none given).
type Exit struct{}

func (Exit) Name() string     { return "exit" }
func (Exit) IsExternal() bool { return false }

func (Exit) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	code := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return value.Value{}, errors.New(errors.ErrIO, "exit: invalid exit code "+args[0])
		}
		code = n
	}
	os.Exit(code)
	return value.Int(0), nil
}
