package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lua-tools/lua-bundle/pkg/project"
)

// WriteFile materializes an assembled bundle at the project's output
// path, creating the output directory as needed and overwriting any
// previous bundle.
func WriteFile(p *project.Project, text string) error {
	if err := os.MkdirAll(p.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", p.Output, err)
	}

	path := filepath.Join(p.Output, p.Name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
