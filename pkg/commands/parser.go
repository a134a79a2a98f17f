package commands

import "strings"

// Invocation is one parsed input line.
type Invocation struct {
	Kind Kind

	// Name is the lowercased first token, prefix included (e.g., "!help")
	Name string

	// Args are the remaining whitespace-separated tokens, case preserved
	Args []string

	// Raw is the original line
	Raw string
}

// Parse splits line on whitespace. Only the command token is case-normalized;
// arguments such as base58 addresses keep their case.
func Parse(line string) Invocation {
	inv := Invocation{Raw: line}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return inv
	}

	inv.Name = strings.ToLower(fields[0])
	inv.Args = fields[1:]
	inv.Kind = Lookup(inv.Name)
	return inv
}

// IsCommand reports whether line looks like a command, known or not.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Prefix)
}
