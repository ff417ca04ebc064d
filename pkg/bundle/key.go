// Package bundle implements the bundling engine: module key derivation,
// source transcompilation, module wrapping and bundle assembly.
package bundle

import (
	"path/filepath"
	"strings"
)

// Key derives the module key for a file path: the path with its final
// extension removed. Directory separators and casing are preserved so
// the key matches the string modules use to require each other.
func Key(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		// No extension, or a dotfile like ".luacheckrc" whose leading
		// dot is part of the name rather than an extension marker.
		return path
	}
	return path[:len(path)-(len(base)-i)]
}
