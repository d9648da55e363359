package builtins

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

type catMode int

const (
	modeCat catMode = iota
	modeHead
	modeTail
)

// CatHeadTail backs cat/head/tail: all three stream one or more files
// (or stdin) to stdout, optionally numbering lines, with head/tail
// additionally bounding how many lines are shown.
type CatHeadTail struct {
	Mode catMode
}

func (c CatHeadTail) Name() string {
	switch c.Mode {
	case modeHead:
		return "head"
	case modeTail:
		return "tail"
	default:
		return "cat"
	}
}

func (CatHeadTail) IsExternal() bool { return false }

func (c CatHeadTail) Exec(args []string, scope *value.Scope, cio registry.CommandIO) (value.Value, error) {
	fs := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)
	numbered := fs.BoolP("number", "n", false, "number all output lines")
	lines := 10
	if c.Mode != modeCat {
		fs.IntVarP(&lines, "lines", "l", 10, "number of lines to output")
	}
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return value.Value{}, errors.Wrap(errors.ErrIO, c.Name()+": parsing flags", err)
	}
	filenames := fs.Args()

	if len(filenames) == 0 {
		if err := c.processInput(os.Stdin, *numbered, lines, cio.Stdout); err != nil {
			return value.Value{}, err
		}
		return value.Int(0), nil
	}
	for _, name := range filenames {
		f, err := os.Open(name)
		if err != nil {
			return value.Value{}, errors.Wrap(errors.ErrIO, c.Name()+": "+name, err)
		}
		err = c.processInput(f, *numbered, lines, cio.Stdout)
		f.Close()
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.Int(0), nil
}

func (c CatHeadTail) processInput(r io.Reader, numbered bool, lines int, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	switch c.Mode {
	case modeHead:
		i := 0
		for scanner.Scan() && i < lines {
			printLine(out, numbered, i+1, scanner.Text())
			i++
		}
	case modeTail:
		buf := make([]string, 0, lines)
		start := 0
		for scanner.Scan() {
			if len(buf) == lines {
				buf = buf[1:]
				start++
			}
			buf = append(buf, scanner.Text())
		}
		for i, line := range buf {
			printLine(out, numbered, start+i+1, line)
		}
	default:
		i := 0
		for scanner.Scan() {
			printLine(out, numbered, i+1, scanner.Text())
			i++
		}
	}
	return scanner.Err()
}

func printLine(out io.Writer, numbered bool, n int, text string) {
	if numbered {
		fmt.Fprintf(out, "%6d: %s\n", n, text)
	} else {
		fmt.Fprintln(out, text)
	}
}
