// Package project resolves one raw manifest entry into a validated,
// fully expanded build unit.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/lua-tools/lua-bundle/pkg/manifest"
)

const (
	defaultName   = "a"
	defaultOutput = "build"

	// Bundles are Lua chunks regardless of the source dialect.
	outputExt = ".lua"
)

// Dialect is the Lua variant a project declares. Only the Fennel
// surface syntax changes behavior today, and that is gated by file
// extension rather than this tag; the tag is still parsed strictly so
// typos surface instead of silently building the wrong thing.
type Dialect int

const (
	DialectDefault Dialect = iota
	DialectLua51
	DialectLuau
	DialectFennel
)

func (d Dialect) String() string {
	switch d {
	case DialectLua51:
		return "Lua51"
	case DialectLuau:
		return "Luau"
	case DialectFennel:
		return "Fennel"
	default:
		return "Default"
	}
}

// ParseDialect maps a manifest lua_version string to its Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "", "Default":
		return DialectDefault, nil
	case "Lua51":
		return DialectLua51, nil
	case "Luau":
		return DialectLuau, nil
	case "Fennel":
		return DialectFennel, nil
	}
	return DialectDefault, fmt.Errorf("unknown lua_version %q", s)
}

// Project is one resolved build unit. Files is the flat, expanded,
// order-preserving list; duplicates from overlapping manifest entries
// are kept.
type Project struct {
	Name       string
	Output     string
	EntryPoint string
	Files      []string
	Dialect    Dialect
}

// Options controls resolution strictness and logging.
type Options struct {
	Strict bool
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Resolve validates and materializes one project. Failures here are
// per-project: the caller reports them and moves on to the next entry.
func Resolve(raw manifest.Project, opts Options) (*Project, error) {
	name := raw.Name
	if name == "" {
		name = defaultName
	}

	output := raw.Output
	if output == "" {
		output = defaultOutput
	}

	if raw.EntryPoint == "" {
		return nil, fmt.Errorf("project %s: missing entry_point", name)
	}
	if _, err := os.Stat(raw.EntryPoint); err != nil {
		return nil, fmt.Errorf("project %s: entry_point: %w", name, err)
	}

	dialect, err := ParseDialect(raw.LuaVersion)
	if err != nil {
		if opts.Strict {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}
		opts.logger().Warn("unknown lua_version, using default",
			"project", name, "lua_version", raw.LuaVersion)
	}

	if raw.Files == nil {
		return nil, fmt.Errorf("project %s: missing files list", name)
	}
	var files []string
	for _, entry := range raw.Files {
		expanded, err := expand(entry)
		if err != nil {
			return nil, fmt.Errorf("project %s: files entry %s: %w", name, entry, err)
		}
		files = append(files, expanded...)
	}

	return &Project{
		Name:       name + outputExt,
		Output:     output,
		EntryPoint: raw.EntryPoint,
		Files:      files,
		Dialect:    dialect,
	}, nil
}

// expand flattens one files entry: a regular file stands alone, a
// directory contributes every file beneath it. WalkDir visits entries
// in lexical order and does not follow symlinks, so directory-derived
// file order is deterministic and cyclic links cannot loop.
func expand(entry string) ([]string, error) {
	info, err := os.Stat(entry)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{entry}, nil
	}

	var files []string
	err = filepath.WalkDir(entry, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
