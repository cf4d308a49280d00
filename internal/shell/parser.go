package shell

import "strings"

// ParsedCommand is one input line split into a command name and arguments
type ParsedCommand struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	Original string   `json:"original"`
}

// ParseCommand splits input on runs of whitespace. There is no quoting,
// escaping, piping or redirection: the first field is the command and the
// rest are positional arguments. Blank input yields an empty Command.
func ParseCommand(input string) ParsedCommand {
	fields := strings.Fields(input)
	parsed := ParsedCommand{Args: []string{}, Original: input}
	if len(fields) == 0 {
		return parsed
	}
	parsed.Command = fields[0]
	parsed.Args = append(parsed.Args, fields[1:]...)
	return parsed
}

// unquote strips one matching pair of surrounding single or double quotes
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// splitAssignment parses "key=value" joined from args, unquoting the value.
func splitAssignment(args []string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(strings.Join(args, " "), "=")
	if !ok || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, unquote(value), true
}

// splitFlags separates leading "-x" style options from operands.
// A lone "-" and anything after "--" are operands.
func splitFlags(args []string) (flags map[string]bool, operands []string) {
	flags = map[string]bool{}
	for i, a := range args {
		if a == "--" {
			return flags, append(operands, args[i+1:]...)
		}
		if len(a) > 1 && a[0] == '-' {
			flags[a] = true
			continue
		}
		operands = append(operands, a)
	}
	return flags, operands
}
