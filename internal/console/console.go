// Package console implements the HBNB command interpreter: a line-oriented
// loop that parses commands and calls into the storage engine.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// DefaultPrompt is shown before each line in interactive sessions.
const DefaultPrompt = "(hbnb) "

// Store is the storage engine surface the console needs.
type Store interface {
	Create(kind string) (types.Record, error)
	Get(kind, id string) (types.Record, error)
	Delete(kind, id string) error
	Update(kind, id, name, value string) error
	Filter(substr string) []types.Record
}

// Console reads commands and writes their output to out.
type Console struct {
	store  Store
	out    io.Writer
	prompt string
}

// Option configures a Console.
type Option func(c *Console)

// WithPrompt sets the prompt printed before each line. An empty prompt
// disables it, which suits piped input.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// New returns a console bound to store.
func New(store Store, out io.Writer, opts ...Option) *Console {
	c := &Console{store: store, out: out, prompt: DefaultPrompt}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes lines from in until quit, EOF or a read error. Lines have no
// length limit. Unsaved changes are not flushed on exit; every mutating
// command saves on its own.
func (c *Console) Run(in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		if c.prompt != "" {
			fmt.Fprint(c.out, c.prompt)
		}
		line, err := r.ReadString('\n')
		if line != "" && c.Execute(strings.TrimSuffix(line, "\n")) {
			return nil
		}
		if err != nil {
			if c.prompt != "" {
				fmt.Fprintln(c.out)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Execute runs one command line and reports whether the session should end.
// Command failures are printed; they never end the session.
func (c *Console) Execute(line string) bool {
	args := splitArgs(line)
	if len(args) == 0 {
		return false
	}

	quit, err := c.Dispatch(args[0], args[1:])
	if errors.Is(err, errUnknownCommand) {
		fmt.Fprintf(c.out, "*** Unknown syntax: %s\n", strings.TrimSpace(line))
		return false
	}
	if err != nil {
		fmt.Fprintln(c.out, Message(err))
	}
	return quit
}

// Dispatch runs the named command with already split arguments.
func (c *Console) Dispatch(name string, args []string) (bool, error) {
	switch name {
	case "quit", "EOF":
		return true, nil
	case "help":
		c.help(args)
		return false, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	return false, cmd.run(c, args)
}

func (c *Console) help(args []string) {
	if len(args) == 0 {
		names := make([]string, 0, len(commands)+3)
		for name := range commands {
			names = append(names, name)
		}
		names = append(names, "EOF", "help", "quit")
		sort.Strings(names)
		fmt.Fprintln(c.out, "Documented commands (type help <topic>):")
		fmt.Fprintln(c.out, "========================================")
		fmt.Fprintln(c.out, strings.Join(names, "  "))
		return
	}

	topic := args[0]
	switch topic {
	case "quit":
		fmt.Fprintln(c.out, "Quit command to exit the program")
	case "EOF":
		fmt.Fprintln(c.out, "End of input exits the program")
	case "help":
		fmt.Fprintln(c.out, "List available commands with \"help\" or detailed help with \"help cmd\".")
	default:
		cmd, ok := commands[topic]
		if !ok {
			fmt.Fprintf(c.out, "*** No help on %s\n", topic)
			return
		}
		fmt.Fprintln(c.out, cmd.help)
	}
}

// splitArgs splits a command line on whitespace. A double-quoted segment
// stays in a single argument, quotes included, so values may contain spaces.
func splitArgs(line string) []string {
	var (
		args    []string
		current strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
			started = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\r' || r == '\n'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}
	return args
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
