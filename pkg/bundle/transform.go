package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Compiler turns alternate-syntax source text into Lua. It is a
// capability injected into the engine so tests and callers can swap the
// external process for an in-process implementation or a fake.
type Compiler interface {
	Compile(ctx context.Context, source string) (string, error)
}

// CompilerFunc adapts a plain function to the Compiler interface.
type CompilerFunc func(ctx context.Context, source string) (string, error)

func (f CompilerFunc) Compile(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// CompileError reports a transcompiler that ran but did not produce a
// usable result. Partial output is never bundled.
type CompileError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compile %s: %v", e.Path, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// ExecCompiler pipes source through an external executable: the full
// text is written to stdin, stdout is read to completion and becomes
// the compiled result. A nonzero exit status is an error carrying
// whatever the compiler wrote to stderr.
type ExecCompiler struct {
	Name string
	Args []string
}

func (c *ExecCompiler) Compile(ctx context.Context, source string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CompileError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	// Best-effort decode: a compiler emitting stray invalid bytes gets
	// replacement characters, not a failed build.
	return strings.ToValidUTF8(stdout.String(), "�"), nil
}

// Transforms maps file extensions to the compiler for that syntax.
// Files with any other extension are bundled byte-identical.
type Transforms map[string]Compiler

// DefaultTransforms wires the fennel transcompiler for .fnl sources.
func DefaultTransforms() Transforms {
	return Transforms{
		".fnl": &ExecCompiler{Name: "fennel", Args: []string{"--compile", "-"}},
	}
}

// Apply returns the Lua source for one file. Dispatch is by extension:
// the project's declared dialect does not decide which files compile.
func (t Transforms) Apply(ctx context.Context, path, contents string) (string, error) {
	c, ok := t[filepath.Ext(path)]
	if !ok {
		return contents, nil
	}

	out, err := c.Compile(ctx, contents)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
			return "", ce
		}
		return "", fmt.Errorf("compile %s: %w", path, err)
	}
	return out, nil
}
