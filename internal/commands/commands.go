package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
)

const prefix = "cmd "

// ErrUsage is wrapped when a line names no command or an unknown one.
var ErrUsage = errors.New("usage")

// Command is a subcommand. Setup declares its flags on a fresh FlagSet for every execution
// and returns the function to run once they are parsed, so values never leak between runs.
type Command struct {
	Name  string
	Help  string
	Setup func(fs *flag.FlagSet) func() error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. name is the first token after "cmd" (e.g. "select").
func (r *Registry) Register(name, help string, setup func(fs *flag.FlagSet) func() error) {
	r.cmds[name] = &Command{Name: name, Help: help, Setup: setup}
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Parse interprets line as a terminal line. If line starts with "cmd " (case-sensitive),
// the rest is tokenized by spaces and returned with ok true. Otherwise nil, false.
func Parse(line string) (args []string, ok bool) {
	if !strings.HasPrefix(line, prefix) {
		return nil, false
	}
	rest := strings.TrimSpace(line[len(prefix):])
	if rest == "" {
		return nil, true
	}
	return strings.Fields(rest), true
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from the command itself.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing subcommand (have %s)", ErrUsage, strings.Join(r.Names(), ", "))
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, name)
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	run := cmd.Setup(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return run()
}
