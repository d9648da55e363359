package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeSetAndLookupThroughChain(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	root.Set("x", Int(1))

	child := root.NewChild()
	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, Int(1), v.Value)

	_, ok = child.LookupLocal("x")
	assert.False(t, ok, "x was declared in root, not local to child")
}

func TestScopeAssignMutatesThroughChain(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	root.Set("x", Int(1))
	child := root.NewChild()

	ok := child.Assign("x", Int(2))
	require.True(t, ok)

	v, _ := root.Lookup("x")
	assert.Equal(t, Int(2), v.Value)
}

func TestScopeAssignUndeclaredFails(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	ok := root.Assign("nope", Int(1))
	assert.False(t, ok)
}

func TestScopeEraseIsLocalOnly(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	root.Set("x", Int(1))
	child := root.NewChild()
	child.Set("x", Int(2))

	child.Erase("x")
	_, ok := child.LookupLocal("x")
	assert.False(t, ok)

	v, ok := child.Lookup("x")
	require.True(t, ok, "root's x should still be visible")
	assert.Equal(t, Int(1), v.Value)
}

func TestScopeClearIsIdempotentAcrossReEvaluation(t *testing.T) {
	s := NewRootScope("/bin/mysh").NewChild()
	s.Set("i", Int(1))
	s.Clear()
	_, ok := s.LookupLocal("i")
	assert.False(t, ok)
}

func TestHoistErrorsCopiesIntoParent(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	child := root.NewChild()
	child.AppendError("false", "command failed")

	child.HoistErrors()

	v, ok := root.Lookup("__errors")
	require.True(t, ok)
	assert.Contains(t, v.Value.String(), "command failed")
}

func TestNewRootScopeSetsShellPath(t *testing.T) {
	root := NewRootScope("/bin/mysh")
	v, ok := root.Lookup("SHELL")
	require.True(t, ok)
	assert.Equal(t, "/bin/mysh", v.Value.String())
}

func TestInterruptFlagRoundTrip(t *testing.T) {
	ResetInterrupt()
	assert.False(t, Interrupted())
	Interrupt()
	assert.True(t, Interrupted())
	ResetInterrupt()
	assert.False(t, Interrupted())
}
