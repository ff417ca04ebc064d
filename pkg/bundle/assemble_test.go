package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lua-tools/lua-bundle/pkg/project"
)

func writeTree(t *testing.T, files map[string]string) {
	t.Helper()
	t.Chdir(t.TempDir())
	for path, contents := range files {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestAssemble(t *testing.T) {
	writeTree(t, map[string]string{
		"main.lua":     "local util = require(\"lib/util\")\nutil.greet()\n",
		"lib/util.lua": "local util = {}\nfunction util.greet()\n\tprint(\"hi\")\nend\nreturn util\n",
	})

	p := &project.Project{
		Name:       "a.lua",
		Output:     "build",
		EntryPoint: "main.lua",
		Files:      []string{"main.lua", "lib/util.lua"},
	}
	asm := &Assembler{Accessor: "require", Transforms: Transforms{}}

	out, err := asm.Assemble(context.Background(), p)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}

	if !strings.HasPrefix(out, runtimePreamble) {
		t.Fatal("bundle must start with the runtime preamble")
	}
	if !strings.Contains(out, "\nlocal files = {") {
		t.Fatal("missing module table open")
	}
	if strings.Count(out, `["main"] = function(functions)`) != 1 {
		t.Fatal("missing entry for main")
	}
	if strings.Count(out, `["lib/util"] = function(functions)`) != 1 {
		t.Fatal("missing entry for lib/util")
	}
	if !strings.HasSuffix(out, "}):require(\"main\")\n") {
		t.Fatalf("missing entry-point epilogue, got tail %q", out[len(out)-40:])
	}
	if strings.Index(out, `["main"]`) > strings.Index(out, `["lib/util"]`) {
		t.Fatal("modules must appear in file-list order")
	}
}

func TestAssembleIdempotent(t *testing.T) {
	writeTree(t, map[string]string{"main.lua": "print(1)\n"})

	p := &project.Project{
		Name:       "a.lua",
		Output:     "build",
		EntryPoint: "main.lua",
		Files:      []string{"main.lua"},
	}
	asm := &Assembler{Accessor: "require", Transforms: Transforms{}}

	first, err := asm.Assemble(context.Background(), p)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	second, err := asm.Assemble(context.Background(), p)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	if first != second {
		t.Fatal("assembling unchanged inputs must be byte-identical")
	}
}

func TestAssembleTransformGate(t *testing.T) {
	writeTree(t, map[string]string{
		"main.lua": "require(\"mod\")\n",
		"mod.fnl":  "(print :hi)\n",
	})

	compiled := "print(\"hi\")\n"
	asm := &Assembler{
		Accessor: "require",
		Transforms: Transforms{
			".fnl": CompilerFunc(func(context.Context, string) (string, error) {
				return compiled, nil
			}),
		},
	}
	p := &project.Project{
		Name:       "a.lua",
		Output:     "build",
		EntryPoint: "main.lua",
		Files:      []string{"main.lua", "mod.fnl"},
	}

	out, err := asm.Assemble(context.Background(), p)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	if !strings.Contains(out, "\t\tprint(\"hi\")") {
		t.Fatal("fnl module should carry compiled output")
	}
	if strings.Contains(out, "(print :hi)") {
		t.Fatal("raw fennel source leaked into the bundle")
	}
	if !strings.Contains(out, "\t\trequire(\"mod\")") {
		t.Fatal("lua module must be bundled unchanged")
	}
}

func TestAssembleDuplicateKeys(t *testing.T) {
	writeTree(t, map[string]string{"main.lua": "print(1)\n"})

	p := &project.Project{
		Name:       "a.lua",
		Output:     "build",
		EntryPoint: "main.lua",
		Files:      []string{"main.lua", "main.lua"},
	}

	lenient := &Assembler{Accessor: "require", Transforms: Transforms{}}
	out, err := lenient.Assemble(context.Background(), p)
	if err != nil {
		t.Fatalf("lenient mode must keep last-write-wins behavior: %v", err)
	}
	if strings.Count(out, `["main"] = function(functions)`) != 2 {
		t.Fatal("duplicate entries are kept; the later table key wins at load")
	}

	strict := &Assembler{Accessor: "require", Transforms: Transforms{}, Strict: true}
	if _, err := strict.Assemble(context.Background(), p); err == nil {
		t.Fatal("strict mode must reject duplicate module keys")
	}
}

func TestWriteFile(t *testing.T) {
	writeTree(t, map[string]string{})

	p := &project.Project{Name: "a.lua", Output: filepath.Join("out", "nested")}
	if err := WriteFile(p, "print(1)\n"); err != nil {
		t.Fatalf("failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join("out", "nested", "a.lua"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "print(1)\n" {
		t.Fatalf("got %q", data)
	}

	// Overwrites unconditionally.
	if err := WriteFile(p, "print(2)\n"); err != nil {
		t.Fatalf("failed: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join("out", "nested", "a.lua"))
	if string(data) != "print(2)\n" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}
