package builtins

import (
	"fmt"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Echo writes its arguments, space-joined, followed by a newline.
type Echo struct{}

func (Echo) Name() string     { return "echo" }
func (Echo) IsExternal() bool { return false }

func (Echo) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	fmt.Fprintln(cio.Stdout, strings.Join(args, " "))
	return value.Int(0), nil
}
