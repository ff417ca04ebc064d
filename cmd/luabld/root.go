package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lua-tools/lua-bundle/pkg/bundle"
	"github.com/lua-tools/lua-bundle/pkg/manifest"
	"github.com/lua-tools/lua-bundle/pkg/project"
	"github.com/lua-tools/lua-bundle/pkg/util"
)

var (
	manifestPath string
	chdir        string
	strict       bool
	verbose      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luabld",
		Short: "Bundle Lua projects into single self-contained files",
		Long: titleStyle.Render("luabld") + subtitleStyle.Render(" - a single-file bundler for Lua source trees") + `

Reads a build.toml manifest describing one or more projects and writes
one self-contained Lua file per project: an embedded module registry,
every listed source wrapped as a lazily-required module, and an entry
point invocation. Fennel sources (.fnl) are transcompiled through the
external fennel compiler before bundling.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			if chdir != "" {
				popd, err := util.Pushd(chdir)
				if err != nil {
					return err
				}
				defer func() { _ = popd() }()
			}
			return build(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", manifest.DefaultFile, "build manifest to read")
	cmd.Flags().StringVarP(&chdir, "chdir", "C", "", "run as if started in this directory")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat unknown lua_version values and duplicate module keys as errors")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every bundled module")
	return cmd
}

// build runs the whole manifest: each project is resolved, assembled
// and written in sequence. A failing project is reported and skipped;
// the run only aborts on manifest errors or a transcompiler that cannot
// be launched at all.
func build(ctx context.Context) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	if strict {
		m.Strict = true
	}

	asm := &bundle.Assembler{
		Accessor:   m.RequireFunction,
		Transforms: bundle.DefaultTransforms(),
		Strict:     m.Strict,
	}

	failed := 0
	for _, raw := range m.Projects {
		p, err := project.Resolve(raw, project.Options{Strict: m.Strict})
		if err != nil {
			log.Error("skipping project", "err", err)
			failed++
			continue
		}

		text, err := asm.Assemble(ctx, p)
		if err != nil {
			// A compiler that cannot be launched will fail identically
			// for every remaining alt-syntax file; stop the run here.
			if errors.Is(err, exec.ErrNotFound) {
				return fmt.Errorf("project %s: %w", p.Name, err)
			}
			log.Error("skipping project", "project", p.Name, "err", err)
			failed++
			continue
		}

		if err := bundle.WriteFile(p, text); err != nil {
			return err
		}
		log.Info("wrote bundle",
			"path", filepath.Join(p.Output, p.Name), "modules", len(p.Files))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(m.Projects))
	}
	return nil
}
