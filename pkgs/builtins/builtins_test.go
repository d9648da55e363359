package builtins_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/builtins"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

func newIO() (*bytes.Buffer, *bytes.Buffer, registry.CommandIO) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return out, errOut, registry.CommandIO{Stdout: out, Stderr: errOut, Stdin: strings.NewReader("")}
}

func TestEchoJoinsArgsWithSpaces(t *testing.T) {
	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err := builtins.Echo{}.Exec([]string{"hello", "world"}, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out.String())
}

func TestPwdPrintsWorkingDirectory(t *testing.T) {
	want, err := os.Getwd()
	require.NoError(t, err)

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err = builtins.Pwd{}.Exec(nil, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out.String())
}

func TestCdChangesDirectory(t *testing.T) {
	start, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(start) })

	dir := t.TempDir()
	_, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err = builtins.Cd{}.Exec([]string{dir}, scope, cio)
	require.NoError(t, err)

	got, err := os.Getwd()
	require.NoError(t, err)
	resolvedDir, _ := filepath.EvalSymlinks(dir)
	resolvedGot, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, resolvedDir, resolvedGot)
}

func TestCdFallsBackToHomeVariable(t *testing.T) {
	start, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(start) })

	dir := t.TempDir()
	scope := value.NewRootScope("/bin/mysh")
	scope.Set("HOME", value.Str(dir))

	_, _, cio := newIO()
	_, err = builtins.Cd{}.Exec(nil, scope, cio)
	require.NoError(t, err)

	got, err := os.Getwd()
	require.NoError(t, err)
	resolvedDir, _ := filepath.EvalSymlinks(dir)
	resolvedGot, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, resolvedDir, resolvedGot)
}

func TestCatStreamsFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err := builtins.CatHeadTail{Mode: 0}.Exec([]string{path}, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", out.String())
}

func TestHeadLimitsToRequestedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n4\n5\n"), 0o644))

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	head := builtins.CatHeadTail{Mode: 1}
	_, err := head.Exec([]string{"-l", "2", path}, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out.String())
}

func TestTailKeepsLastNLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n4\n5\n"), 0o644))

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	tail := builtins.CatHeadTail{Mode: 2}
	_, err := tail.Exec([]string{"-l", "2", path}, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, "4\n5\n", out.String())
}

func TestLsListsDirectoryEntriesSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err := builtins.Ls{}.Exec([]string{dir}, scope, cio)
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nb.txt\n", out.String())
}

func TestLsAllShowsDotfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))

	out, _, cio := newIO()
	scope := value.NewRootScope("/bin/mysh")
	_, err := builtins.Ls{}.Exec([]string{"-a", dir}, scope, cio)
	require.NoError(t, err)
	assert.Contains(t, out.String(), ".hidden")
}

func TestRegisterInstallsEveryBuiltin(t *testing.T) {
	reg := registry.New()
	builtins.Register(reg)
	for _, name := range []string{"echo", "cd", "pwd", "exit", "cat", "head", "tail", "ls", "watch"} {
		assert.True(t, reg.IsCommand(name), "expected %q to be registered", name)
	}
}
