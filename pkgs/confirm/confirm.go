// Package confirm implements the overwrite-confirmation collaborator
// used by "=>"/"=>>" redirection. It is deliberately
// small and swappable: scripts and tests can supply a Confirmer that
// never blocks on a terminal.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
)

// Answer is the result of a confirmation prompt.
type Answer int

const (
	No Answer = iota
	Yes
	All
	Quit
)

// Confirmer is the engine's collaborator interface: confirm(prompt,
// scope, default_bool) -> Result<Answer, io-error>.
type Confirmer interface {
	Confirm(prompt string, scope *value.Scope, defaultYes bool) (Answer, error)
}

// Terminal is the interactive Confirmer: it reads a single line from in
// and writes the prompt to out using a bufio.Reader. Once the user
// answers "all", every subsequent call returns All without prompting
// again.
type Terminal struct {
	In       io.Reader
	Out      io.Writer
	answered bool
	sticky   Answer
}

// NewTerminal builds a Terminal confirmer over stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

func (t *Terminal) Confirm(prompt string, scope *value.Scope, defaultYes bool) (Answer, error) {
	if t.answered && t.sticky == All {
		return All, nil
	}
	if noConfirmOverwrite(scope) {
		return Yes, nil
	}
	if isNonInteractive(scope) {
		if defaultYes {
			return Yes, nil
		}
		return No, nil
	}

	suffix := "[y/N/all/quit]"
	if defaultYes {
		suffix = "[Y/n/all/quit]"
	}
	fmt.Fprintf(t.Out, "%s %s ", prompt, suffix)

	reader := bufio.NewReader(t.In)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return No, err
	}
	line = strings.ToLower(strings.TrimSpace(line))

	var ans Answer
	switch line {
	case "":
		if defaultYes {
			ans = Yes
		} else {
			ans = No
		}
	case "y", "yes":
		ans = Yes
	case "n", "no":
		ans = No
	case "a", "all":
		ans = All
		t.answered = true
		t.sticky = All
	case "q", "quit":
		ans = Quit
	default:
		ans = No
	}
	return ans, nil
}

// noConfirmOverwrite reports whether the `no_confirm_overwrite`
// (internal/config) directive is set, in which case overwrite prompts
// should proceed as if the user answered "yes" rather than falling back
// to defaultYes.
func noConfirmOverwrite(scope *value.Scope) bool {
	v, ok := scope.Lookup("__no_confirm")
	return ok && v.Value.Bool()
}

// isNonInteractive reports whether confirmation prompts should be
// auto-answered because they are running under a recognized CI
// environment variable and should not block on stdin.
func isNonInteractive(scope *value.Scope) bool {
	for _, envVar := range []string{
		"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "TRAVIS",
		"CIRCLECI", "JENKINS_URL", "GITLAB_CI", "BUILDKITE", "BUILD_NUMBER",
	} {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}

// Auto is a non-interactive Confirmer for tests and scripted use: it
// always returns the supplied Answer without reading anything.
type Auto struct{ Answer Answer }

func (a Auto) Confirm(prompt string, scope *value.Scope, defaultYes bool) (Answer, error) {
	return a.Answer, nil
}
