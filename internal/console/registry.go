package console

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Env is what a command handler may observe and change on the session
// that invoked it.
type Env interface {
	Elevated() bool
	SetElevated(bool)
	ClearTranscript()
	RequestClose()
}

// Handler produces the output lines for one command.
type Handler func(env Env) []Line

// Command is a registry entry.
type Command struct {
	Name        string
	Description string
	Run         Handler
}

// Registry maps lowercase command names to handlers.
type Registry struct {
	commands map[string]Command
	order    []string
	pick     func(n int) int
}

// Option configures a Registry.
type Option func(*Registry)

// WithPicker replaces the uniform random choice used by whoami.
func WithPicker(pick func(n int) int) Option {
	return func(r *Registry) { r.pick = pick }
}

// NewRegistry returns an empty registry. Most callers want Default.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands: make(map[string]Command),
		pick:     rand.IntN,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a command. Names are stored lowercase; registering the
// same name twice panics.
func (r *Registry) Register(cmd Command) {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" {
		panic("console: empty command name")
	}
	if _, dup := r.commands[name]; dup {
		panic(fmt.Sprintf("console: command %q registered twice", name))
	}
	cmd.Name = name
	r.commands[name] = cmd
	r.order = append(r.order, name)
}

// Lookup finds a command by name, ignoring case and surrounding space.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(strings.TrimSpace(name))]
	return cmd, ok
}

// Names returns the command names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Suggest returns the registered names starting with prefix.
func (r *Registry) Suggest(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	for _, name := range r.order {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Tokens normalizes a raw command line: lowercase, trimmed, split on whitespace.
func Tokens(raw string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
}

// Dispatch runs a raw command line against env. It never fails: input
// that matches nothing yields the "not found" lines.
func (r *Registry) Dispatch(raw string, env Env) []Line {
	args := Tokens(raw)
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	if len(args) == 2 && args[0] == "sudo" && args[1] == "exit" {
		env.SetElevated(false)
		return textLines(
			"Sudo powers revoked.",
			"You may now leave... but why would you want to? 😊",
		)
	}

	if cmd, ok := r.commands[name]; ok {
		return cmd.Run(env)
	}

	if name == "rm" || name == "drop" {
		if env.Elevated() {
			return textLines("Nice try! Even with sudo, you can't delete my portfolio 😎")
		}
		return textLines("Permission denied: Need sudo access for destruction 🛡️")
	}

	return textLines(
		"Command not found: "+name,
		`Type "help" for available commands`,
	)
}
