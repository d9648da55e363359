package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/confirm"
	"github.com/mysh-lang/mysh/pkgs/engine"
	"github.com/mysh-lang/mysh/pkgs/parser"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// stubResolver treats no bareword as a command, so test expressions
// never accidentally try to spawn a process.
type stubResolver struct{}

func (stubResolver) IsCommand(string) bool { return false }

func run(t *testing.T, src string) (value.Value, *value.Scope) {
	t.Helper()
	scope := value.NewRootScope("/bin/mysh")
	eng := engine.New(registry.New(), confirm.Auto{Answer: confirm.Yes})
	root, err := parser.Parse(src, scope, stubResolver{})
	require.NoError(t, err, "parse %q", src)
	v, err := eng.EvalTop(root)
	require.NoError(t, err, "eval %q", src)
	return v, scope
}

func TestArithmeticPrecedence(t *testing.T) {
	v, _ := run(t, "x = 2 + 3 * 4; $x")
	assert.Equal(t, value.Int(14), v)
}

func TestWhileLoopCounts(t *testing.T) {
	v, _ := run(t, "i=0; WHILE($i<3)($i=$i+1); $i")
	assert.Equal(t, value.Int(3), v)
}

func TestForLoopBindsLastElement(t *testing.T) {
	v, _ := run(t, "FOR f IN a b c; ($f)")
	assert.Equal(t, value.Str("c"), v)
}

func TestVariableInterpolationSubstitution(t *testing.T) {
	v, _ := run(t, `NAME=JohnDoe; ${NAME/John/Jane}`)
	assert.Equal(t, value.Str("JaneDoe"), v)
}

func TestAndShortCircuitsOnFalse(t *testing.T) {
	v, _ := run(t, "0 && 1")
	assert.Equal(t, value.Int(0), v)
}

func TestOrShortCircuitsOnTrue(t *testing.T) {
	v, _ := run(t, "1 || 0")
	assert.Equal(t, value.Int(1), v)
}

func TestBreakUnwindsToEnclosingLoop(t *testing.T) {
	v, _ := run(t, "i=0; WHILE(1)($i=$i+1; IF($i>2)(BREAK)); $i")
	assert.Equal(t, value.Int(3), v)
}

func TestAssignEraseForm(t *testing.T) {
	_, scope := run(t, "x = 1; x =")
	_, ok := scope.LookupLocal("x")
	assert.False(t, ok)
}

func TestDerefAssignRequiresExistingVariable(t *testing.T) {
	_, err := func() (value.Value, error) {
		scope := value.NewRootScope("/bin/mysh")
		eng := engine.New(registry.New(), confirm.Auto{Answer: confirm.Yes})
		root, err := parser.Parse("$missing = 1", scope, stubResolver{})
		require.NoError(t, err)
		return eng.EvalTop(root)
	}()
	assert.Error(t, err)
}
