package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/parser"
)

// setResolver resolves exactly the names in its set, so tests control
// bareword-vs-command classification without a real registry.
type setResolver map[string]bool

func (s setResolver) IsCommand(name string) bool { return s[name] }

func parse(t *testing.T, src string, res parser.Resolver) *ast.Group {
	t.Helper()
	scope := value.NewRootScope("/bin/mysh")
	g, err := parser.Parse(src, scope, res)
	require.NoError(t, err, "parse %q", src)
	return g
}

func TestBarewordResolvesToCmdWhenKnown(t *testing.T) {
	g := parse(t, "ls -la", setResolver{"ls": true})
	require.Len(t, g.Stmts, 1)
	cmd, ok := g.Stmts[0].(*ast.Cmd)
	require.True(t, ok, "expected *ast.Cmd, got %T", g.Stmts[0])
	assert.Equal(t, "ls", cmd.Name)
	assert.Equal(t, []string{"-la"}, leafTexts(cmd.Args.Items))
}

func TestBarewordIsLeafWhenUnknown(t *testing.T) {
	g := parse(t, "notacommand", setResolver{})
	require.Len(t, g.Stmts, 1)
	leaf, ok := g.Stmts[0].(*ast.Leaf)
	require.True(t, ok, "expected *ast.Leaf, got %T", g.Stmts[0])
	assert.Equal(t, "notacommand", leaf.Text)
}

func TestArithmeticPrecedenceGrouping(t *testing.T) {
	g := parse(t, "2 + 3 * 4", setResolver{})
	require.Len(t, g.Stmts, 1)
	bin, ok := g.Stmts[0].(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)

	rhs, ok := bin.Rhs.(*ast.Bin)
	require.True(t, ok, "rhs of + should be the nested * node")
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestStringRoundTripsArithmetic(t *testing.T) {
	g := parse(t, "2 + 3 * 4", setResolver{})
	assert.Equal(t, "2 + 3 * 4", g.Stmts[0].String())
}

func TestIfElseStructure(t *testing.T) {
	g := parse(t, "IF (1) (x = 1) ELSE (x = 2)", setResolver{})
	require.Len(t, g.Stmts, 1)
	branch, ok := g.Stmts[0].(*ast.Branch)
	require.True(t, ok, "expected *ast.Branch, got %T", g.Stmts[0])
	require.NotNil(t, branch.IfBranch)
	require.NotNil(t, branch.ElseBranch)
}

func TestWhileStructure(t *testing.T) {
	g := parse(t, "WHILE ($i < 3) ($i = $i + 1)", setResolver{})
	loop, ok := g.Stmts[0].(*ast.Loop)
	require.True(t, ok, "expected *ast.Loop, got %T", g.Stmts[0])
	cond, ok := loop.Cond.(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpLt, cond.Op)
}

func TestForStructure(t *testing.T) {
	g := parse(t, "FOR f IN a b c; ($f)", setResolver{})
	forNode, ok := g.Stmts[0].(*ast.For)
	require.True(t, ok, "expected *ast.For, got %T", g.Stmts[0])
	assert.Equal(t, "f", forNode.Var)
	assert.Equal(t, []string{"a", "b", "c"}, leafTexts(forNode.In.Items))
}

func TestForRequiresNonEmptyInList(t *testing.T) {
	scope := value.NewRootScope("/bin/mysh")
	_, err := parser.Parse("FOR f IN; (f)", scope, setResolver{})
	assert.Error(t, err)
}

func TestPipeIsLeftAssociative(t *testing.T) {
	g := parse(t, "a | b | c", setResolver{})
	outer, ok := g.Stmts[0].(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpPipe, outer.Op)

	inner, ok := outer.Lhs.(*ast.Bin)
	require.True(t, ok, "lhs of the outer pipe should itself be a pipe")
	assert.Equal(t, ast.OpPipe, inner.Op)
}

func TestAssignEraseFormParsesEmptyRhs(t *testing.T) {
	g := parse(t, "x =", setResolver{})
	bin, ok := g.Stmts[0].(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpAssign, bin.Op)
	assert.True(t, ast.IsEmpty(bin.Rhs))
}

func TestUnmatchedParenIsAnError(t *testing.T) {
	scope := value.NewRootScope("/bin/mysh")
	_, err := parser.Parse("(1 + 1", scope, setResolver{})
	assert.Error(t, err)
}

func leafTexts(items []ast.Node) []string {
	out := make([]string, len(items))
	for i, it := range items {
		leaf := it.(*ast.Leaf)
		out[i] = leaf.Text
	}
	return out
}
