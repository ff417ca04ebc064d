package bundle

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lua-tools/lua-bundle/pkg/project"
)

const (
	tableOpen  = "\nlocal files = {"
	tableClose = "\n}\n"
)

// Assembler builds one bundle per project. Accessor is the identifier
// injected into every module as its dependency accessor; Transforms
// decides which files are transcompiled before wrapping.
type Assembler struct {
	Accessor   string
	Transforms Transforms
	Strict     bool
	Logger     *log.Logger
}

func (a *Assembler) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.Default()
}

// Assemble concatenates the runtime preamble, the module table and the
// entry-point epilogue for one project, in file-list order. The result
// is built fully in memory; writing it out is the caller's concern.
func (a *Assembler) Assemble(ctx context.Context, p *project.Project) (string, error) {
	var out strings.Builder
	out.WriteString(runtimePreamble)
	out.WriteString(tableOpen)

	seen := map[string]string{}
	for _, file := range p.Files {
		key := Key(file)
		if prev, ok := seen[key]; ok {
			if a.Strict {
				return "", fmt.Errorf("module key %q produced by both %s and %s", key, prev, file)
			}
			a.logger().Warn("duplicate module key, last write wins",
				"key", key, "first", prev, "file", file)
		}
		seen[key] = file

		contents, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		src, err := a.Transforms.Apply(ctx, file, string(contents))
		if err != nil {
			return "", err
		}
		entry, err := Wrap(key, src, a.Accessor, 1)
		if err != nil {
			return "", err
		}

		a.logger().Debug("bundled module", "key", key, "file", file)
		out.WriteString(entry)
	}
	out.WriteString(tableClose)

	entryKey := Key(p.EntryPoint)
	if strings.ContainsAny(entryKey, "\"\\\n\r") {
		return "", fmt.Errorf("entry point key %q cannot appear in a Lua string literal", entryKey)
	}
	if _, ok := seen[entryKey]; !ok {
		// The bundle still assembles; its runtime will error at load.
		a.logger().Warn("entry point is not part of the module table", "key", entryKey)
	}
	out.WriteString(epilogue(entryKey))

	return out.String(), nil
}

// epilogue constructs a fresh runtime instance over the module table
// and requires the entry point, kicking off execution when the bundle
// is loaded.
func epilogue(entryKey string) string {
	return fmt.Sprintf("\nfunctions.new({\n\tfiles = files,\n\tmodules = {},\n}):require(\"%s\")\n", entryKey)
}
