package elevation

import "strings"

// escapeArgument quotes a single command line argument for ShellExecute.
// Backslashes and double quotes are escaped, the result is always wrapped in
// quotes so that empty arguments and spaces survive.
func escapeArgument(arg string) string {
	escaped := strings.ReplaceAll(arg, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// joinArgs builds the parameter string handed to the relaunched process.
func joinArgs(args []string) string {
	escaped := make([]string, 0, len(args))
	for _, arg := range args {
		escaped = append(escaped, escapeArgument(arg))
	}
	return strings.Join(escaped, " ")
}
