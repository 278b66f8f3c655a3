package emit

import (
	"fmt"
	"os"
	"path/filepath"
)

// MirrorSubdir is the fixed location of the generated package inside a
// mirrored project tree.
const MirrorSubdir = "internal/game"

// Mirror copies an emitted artifact set from outDir into a project tree, at
// the fixed MirrorSubdir path. An earlier mirror at that path is replaced
// wholesale so the project never accumulates stale artifacts.
func Mirror(outDir, projectDir string) error {
	dst := filepath.Join(projectDir, filepath.FromSlash(MirrorSubdir))
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("mirror: clear %s: %w", dst, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("mirror: create %s: %w", dst, err)
	}
	for _, name := range Artifacts {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			return fmt.Errorf("mirror: read %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dst, name), content, 0o644); err != nil {
			return fmt.Errorf("mirror: write %s: %w", name, err)
		}
	}
	return nil
}
