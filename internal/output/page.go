package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/folio/internal/logger"
)

// DefaultPageName is the file name used for a single generated page.
const DefaultPageName = "portfolio.html"

// PagePath returns where a page is written. With an empty dir the page goes
// to DefaultPageName in the working directory; otherwise to dir/<slug>.html.
func PagePath(dir, slug string) string {
	if dir == "" {
		return DefaultPageName
	}
	if slug == "" {
		slug = "portfolio"
	}
	return filepath.Join(dir, slug+".html")
}

// WriteFile writes data to path via a temporary file in the same directory,
// creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".folio-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //#nosec G302 -- generated pages are meant to be shared
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	logger.Debug("file written", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// WritePage writes html to PagePath(dir, slug) and returns the path.
func WritePage(dir, slug, html string) (string, error) {
	path := PagePath(dir, slug)
	if err := WriteFile(path, []byte(html)); err != nil {
		return "", err
	}
	return path, nil
}
