// Command einops-cli is a small command-line front end exercising the
// public pkg/einops API against the CPU float64 backend: rearrange,
// reduce and repeat each read tensor data from stdin and write the result's
// shape and flat data to stdout; describe runs parse_shape against a shape
// given on the command line and reads no stdin.
//
// Grounded on the teacher's cmd/cli Command/CommandRegistry framework
// (register-by-name commands driven by a small hand-rolled flag loop) and
// cmd/zerfoo-train's flags-then-JSON-config override idiom, both adapted
// from a generic ML-framework CLI into one exercising the rearrangement
// language instead.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dorpxam/einops-go/internal/config"
)

// Command is one einops-cli subcommand.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// CommandRegistry looks subcommands up by name.
type CommandRegistry struct {
	commands map[string]Command
	order    []string
}

// NewCommandRegistry builds an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]Command)}
}

// Register adds cmd, keyed by its Name().
func (r *CommandRegistry) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name()]; !exists {
		r.order = append(r.order, cmd.Name())
	}

	r.commands[cmd.Name()] = cmd
}

// Get looks up a command by name.
func (r *CommandRegistry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]

	return cmd, ok
}

func main() {
	registry := NewCommandRegistry()
	registry.Register(&rearrangeCommand{})
	registry.Register(&repeatCommand{})
	registry.Register(&reduceCommand{})
	registry.Register(&describeCommand{})

	if len(os.Args) < 2 {
		printUsage(registry)
		os.Exit(1)
	}

	name := os.Args[1]

	cmd, ok := registry.Get(name)
	if !ok {
		log.Printf("einops-cli: unknown command %q", name)
		printUsage(registry)
		os.Exit(1)
	}

	cfg := config.Default()

	rest, configPath := extractConfigFlag(os.Args[2:])
	if configPath != "" {
		if err := cfg.LoadJSON(configPath); err != nil {
			log.Fatalf("einops-cli: loading -config %s: %v", configPath, err)
		}
	}

	if err := cmd.Run(context.Background(), cfg, rest); err != nil {
		log.Fatalf("einops-cli %s: %v", name, err)
	}
}

// extractConfigFlag pulls the first "-config <path>"/"--config <path>" (or
// "-config=<path>") pair out of args, wherever it appears, returning the
// remaining args for the subcommand's own flag.FlagSet to parse. Subcommand
// flag sets don't know about -config, so it has to be consumed here, before
// dispatch. main loads the file onto the defaults before the subcommand
// parses its flags, so flags given on the command line take precedence over
// the file.
func extractConfigFlag(args []string) ([]string, string) {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 >= len(args) {
				return args, ""
			}

			rest := append(append([]string{}, args[:i]...), args[i+2:]...)

			return rest, args[i+1]
		case len(a) > 8 && a[:8] == "-config=":
			rest := append(append([]string{}, args[:i]...), args[i+1:]...)

			return rest, a[8:]
		case len(a) > 9 && a[:9] == "--config=":
			rest := append(append([]string{}, args[:i]...), args[i+1:]...)

			return rest, a[9:]
		}
	}

	return args, ""
}

func printUsage(registry *CommandRegistry) {
	fmt.Fprintln(os.Stderr, "einops-cli <command> [options]")
	fmt.Fprintln(os.Stderr, "\nCOMMANDS:")

	for _, name := range registry.order {
		cmd, _ := registry.Get(name)
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", name, cmd.Description())
	}

	fmt.Fprintln(os.Stderr, "\nUse '<command> --help' for its flags.")
}
