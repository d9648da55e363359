// Command mysh is the interactive shell and script runner built on
// pkgs/parser and pkgs/engine.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mysh-lang/mysh/internal/config"
	"github.com/mysh-lang/mysh/internal/history"
	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/builtins"
	"github.com/mysh-lang/mysh/pkgs/confirm"
	"github.com/mysh-lang/mysh/pkgs/engine"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/parser"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

func main() {
	var command string

	root := &cobra.Command{
		Use:           "mysh [script]",
		Short:         "A small interactive shell with an embedded expression language",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := newShell(command == "" && len(args) == 0)
			if err != nil {
				return err
			}
			defer sh.save()

			installSigintHandler()

			switch {
			case command != "":
				return sh.runAndExit(command)
			case len(args) == 1:
				return sh.runFile(args[0])
			default:
				sh.repl()
				return nil
			}
		},
	}
	root.Flags().StringVarP(&command, "command", "c", "", "run the given command text and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mysh:", err)
		os.Exit(1)
	}
}

func installSigintHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range sigCh {
			value.Interrupt()
		}
	}()
}

// shell bundles everything needed to parse and evaluate input: the
// shared registry/engine/scope plus the optional persisted history.
type shell struct {
	reg         *registry.Registry
	eng         *engine.Engine
	scope       *value.Scope
	cfg         config.Config
	hist        *history.History
	historyPath string
	lastSrc     string
}

// newShell builds the shell; the rc file is loaded only when repl is
// true (no -c text and no script file) and stdin is a terminal.
func newShell(repl bool) (*shell, error) {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	cfg := config.Default()
	if repl && isInteractive() {
		loaded, err := config.Load(config.DefaultPath())
		if err != nil {
			fmt.Fprintln(os.Stderr, "mysh: config:", err)
		} else {
			cfg = loaded
		}
	}

	reg := registry.New()
	builtins.Register(reg)

	scope := value.NewRootScope(self)
	scope.Set("SHELL", value.Str(self))
	if cfg.NoConfirmOverwrite {
		scope.Set("__no_confirm", value.Int(1))
	}

	historyPath := filepath.Join(filepath.Dir(config.DefaultPath()), ".mysh_history.cbor")
	scope.Set("HISTORY", value.Str(historyPath))
	hist, err := history.Load(historyPath, cfg.HistoryLimit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mysh: history:", err)
	}

	return &shell{
		reg:         reg,
		eng:         engine.New(reg, confirm.NewTerminal()),
		scope:       scope,
		cfg:         cfg,
		hist:        hist,
		historyPath: historyPath,
	}, nil
}

func (s *shell) save() {
	if s.hist == nil {
		return
	}
	if err := s.hist.Save(s.historyPath); err != nil {
		fmt.Fprintln(os.Stderr, "mysh: history:", err)
	}
}

func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// expandHistory rewrites a leading `!`-recall token, if present, to the
// matching recorded command line before parsing.
func (s *shell) expandHistory(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "!") || s.hist == nil {
		return line
	}
	if resolved, ok := s.hist.Recall(trimmed); ok {
		return resolved
	}
	return line
}

func (s *shell) eval(src string) (value.Value, error) {
	s.lastSrc = src
	root, err := parser.Parse(src, s.scope, s.reg)
	if err != nil {
		return value.Value{}, err
	}
	return s.eng.EvalTop(root)
}

// runAndExit evaluates text (the `-c` flag) and exits with its status
// code.
func (s *shell) runAndExit(text string) error {
	v, err := s.eval(text)
	if err != nil {
		return err
	}
	os.Exit(exitCodeOf(v))
	return nil
}

func (s *shell) runFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrIO, "reading "+path, err)
	}
	v, err := s.eval(string(data))
	if err != nil {
		return err
	}
	if code := exitCodeOf(v); code != 0 {
		os.Exit(code)
	}
	return nil
}

func (s *shell) repl() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, s.cfg.PromptFormat)
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		value.ResetInterrupt()
		expanded := s.expandHistory(line)
		s.hist.Add(expanded)

		v, err := s.eval(expanded)
		if err != nil {
			fmt.Fprintln(os.Stderr, s.describeError(err))
			continue
		}
		if v.Kind != value.KindStatus {
			fmt.Fprintln(os.Stdout, v.String())
		}
	}
}

func (s *shell) describeError(err error) string {
	if evalErr, ok := err.(*errors.EvalError); ok {
		return evalErr.Show(s.lastSrc)
	}
	return err.Error()
}

func exitCodeOf(v value.Value) int {
	if v.Kind == value.KindStatus {
		if v.Status.Err != nil {
			return 1
		}
		return 0
	}
	if v.Kind == value.KindInt {
		return int(v.Int)
	}
	if n, err := strconv.Atoi(v.String()); err == nil {
		return n
	}
	return 0
}
