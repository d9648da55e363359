package builtins

import (
	"fmt"
	"os"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Pwd prints the current working directory.
type Pwd struct{}

func (Pwd) Name() string     { return "pwd" }
func (Pwd) IsExternal() bool { return false }

func (Pwd) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	dir, err := os.Getwd()
	if err != nil {
		return value.Value{}, errors.Wrap(errors.ErrIO, "pwd", err)
	}
	fmt.Fprintln(cio.Stdout, dir)
	return value.Int(0), nil
}
