package bundle

import (
	"fmt"
	"strings"
)

// indentBlock shifts every non-blank line of block right by level tabs.
// Blank lines stay empty so the bundle carries no trailing whitespace.
func indentBlock(block string, level int) string {
	indent := strings.Repeat("\t", level)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

// injectAccessor prepends the statement binding the module's lazy
// dependency accessor and shadowing the registry plumbing names, so
// module code cannot reach the surrounding table machinery.
func injectAccessor(code, accessor string) string {
	return fmt.Sprintf("local %s, functions, get_require = get_require(functions), nil, nil\n\n%s", accessor, code)
}

// Wrap produces one module-table entry: the source, accessor-injected
// and indented one tab, inside a factory function keyed by the module
// key, with the whole entry indented level more tabs for nesting inside
// the table literal. Wrapping is purely textual; the source is not
// validated as Lua.
func Wrap(key, source, accessor string, level int) (string, error) {
	if strings.ContainsAny(key, "\"\\\n\r") {
		return "", fmt.Errorf("module key %q cannot appear in a Lua string literal", key)
	}

	body := indentBlock(strings.TrimRight(injectAccessor(source, accessor), "\n"), 1)
	entry := fmt.Sprintf("\n[\"%s\"] = function(functions)\n%s\nend,\n", key, body)
	return indentBlock(entry, level), nil
}
