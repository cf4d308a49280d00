package shell

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

func environmentCommands() []Command {
	return []Command{
		{Name: "env", Description: "Print environment variables", Usage: "env", Category: CategoryEnvironment, Run: runEnv},
		{Name: "export", Description: "Set an environment variable, or list them", Usage: "export [KEY=value]", Category: CategoryEnvironment, Run: runExport},
		{Name: "unset", Description: "Remove environment variables", Usage: "unset <KEY...>", Category: CategoryEnvironment, Run: runUnset},
		{Name: "alias", Description: "Define an alias, or list them", Usage: "alias [name=command]", Category: CategoryEnvironment, Run: runAlias},
		{Name: "unalias", Description: "Remove aliases", Usage: "unalias <name...>", Category: CategoryEnvironment, Run: runUnalias},
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func runEnv(_ context.Context, _ *Shell, _ []string, state State) (Result, error) {
	lines := make([]string, 0, len(state.Environment))
	for _, k := range sortedKeys(state.Environment) {
		lines = append(lines, k+"="+state.Environment[k])
	}
	return ok(joinLines(lines)), nil
}

func runExport(_ context.Context, _ *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		lines := make([]string, 0, len(state.Environment))
		for _, k := range sortedKeys(state.Environment) {
			lines = append(lines, fmt.Sprintf("declare -x %s=%q", k, state.Environment[k]))
		}
		return ok(joinLines(lines)), nil
	}

	key, value, valid := splitAssignment(args)
	if !valid {
		return fail("export: invalid format. Usage: export KEY=value"), nil
	}
	return okWith("", &Effect{SetEnv: map[string]string{key: value}}), nil
}

func runUnset(_ context.Context, _ *Shell, args []string, _ State) (Result, error) {
	if len(args) == 0 {
		return fail("unset: not enough arguments"), nil
	}
	return okWith("", &Effect{UnsetEnv: append([]string(nil), args...)}), nil
}

func runAlias(_ context.Context, _ *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		lines := make([]string, 0, len(state.Aliases))
		for _, k := range sortedKeys(state.Aliases) {
			lines = append(lines, fmt.Sprintf("alias %s='%s'", k, state.Aliases[k]))
		}
		return ok(joinLines(lines)), nil
	}

	name, command, valid := splitAssignment(args)
	if !valid {
		return fail("alias: invalid format. Usage: alias name=command"), nil
	}
	return okWith("", &Effect{SetAlias: map[string]string{name: command}}), nil
}

func runUnalias(_ context.Context, _ *Shell, args []string, state State) (Result, error) {
	if len(args) == 0 {
		return fail("unalias: not enough arguments"), nil
	}

	var r report
	var removed []string
	for _, name := range args {
		if _, found := state.Aliases[name]; !found {
			r.errorf("unalias: %s: not found", name)
			continue
		}
		removed = append(removed, name)
	}
	res := r.result()
	if len(removed) > 0 {
		res.Effect = &Effect{UnsetAlias: removed}
	}
	return res, nil
}
