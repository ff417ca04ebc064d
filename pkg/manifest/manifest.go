// Package manifest loads the top-level build.toml document into raw,
// unvalidated project entries. Per-project validation lives in
// pkg/project so a single bad entry cannot sink the rest of the run.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the manifest looked up in the working directory.
const DefaultFile = "build.toml"

const defaultRequireFunction = "require"

var (
	ErrNotFound   = errors.New("manifest file not found")
	ErrNoProjects = errors.New("manifest has no [[project]] entries")
)

// Project is one raw [[project]] entry, exactly as written.
type Project struct {
	Name       string   `toml:"name"`
	Output     string   `toml:"output"`
	EntryPoint string   `toml:"entry_point"`
	Files      []string `toml:"files"`
	LuaVersion string   `toml:"lua_version"`
}

// Manifest is the parsed build document.
type Manifest struct {
	Projects        []Project `toml:"project"`
	RequireFunction string    `toml:"require_function"`
	Strict          bool      `toml:"strict"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Lua reserved words cannot name the accessor; the injected local
// statement would not parse.
var reservedWords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// Load reads and parses the manifest at path. A missing file, a syntax
// error or a missing project list is fatal to the whole run.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(m.Projects) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoProjects)
	}

	if m.RequireFunction == "" {
		m.RequireFunction = defaultRequireFunction
	}
	if !identRe.MatchString(m.RequireFunction) || reservedWords[m.RequireFunction] {
		return nil, fmt.Errorf("%s: require_function %q is not a valid Lua identifier", path, m.RequireFunction)
	}
	return &m, nil
}
