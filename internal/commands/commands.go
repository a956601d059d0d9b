// Package commands implements the built-in geoflow command set. The set is
// fixed and registered at build time; there is no plugin loading.
package commands

import (
	"fmt"
	"sort"
	"strings"

	"geoflow/internal/workflow"
)

var builtins = map[string]workflow.Command{}

func register(cmd workflow.Command) {
	if _, dup := builtins[cmd.Name()]; dup {
		panic(fmt.Sprintf("duplicate command registration: %s", cmd.Name()))
	}
	builtins[cmd.Name()] = cmd
}

func init() {
	register(&setProperty{})
	register(&readLayer{})
	register(&writeLayer{})
	register(&copyLayer{})
	register(&removeLayer{})
	register(&mergeLayers{})
	register(&clipLayer{})
	register(&reprojectLayer{})
	register(&readTable{})
	register(&writeTable{})
	register(&download{})
	register(&unzip{})
}

// Lookup resolves a command name to its implementation.
func Lookup(name string) (workflow.Command, bool) {
	cmd, ok := builtins[name]
	return cmd, ok
}

// Names returns every registered command name, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build binds parsed steps to command implementations. An unknown command
// name is a script error, reported with its line number.
func Build(steps []workflow.Step) ([]*workflow.Invocation, error) {
	invs := make([]*workflow.Invocation, 0, len(steps))
	for _, step := range steps {
		cmd, ok := Lookup(step.Name)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown command %q (known: %s)",
				step.Line, step.Name, strings.Join(Names(), ", "))
		}
		invs = append(invs, workflow.NewInvocation(cmd, step.Params))
	}
	return invs, nil
}
