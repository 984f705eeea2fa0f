// Package export writes review progress to a file a user can keep.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conorfennell/flashreview/internal/review"
)

// DefaultFileName is the name offered for downloaded or written exports.
const DefaultFileName = "flash_progress.json"

// Encode writes blob as indented JSON.
func Encode(w io.Writer, blob review.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(blob); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// WriteFile writes blob to path through a temporary file and a rename, so a
// failed write never leaves a truncated export behind.
func WriteFile(path string, blob review.Export) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := Encode(f, blob); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

// File exports to a fixed path.
type File struct {
	Path string
}

// Export writes blob to f.Path.
func (f File) Export(blob review.Export) error {
	return WriteFile(f.Path, blob)
}
