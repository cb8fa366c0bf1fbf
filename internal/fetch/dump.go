package fetch

import (
	"bountywatch/internal/chrono"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DumpSource writes every page rendered by the inner source to a directory,
// so a selector profile can be written against the page the scraper saw.
type DumpSource struct {
	inner     Source
	directory string
	time      chrono.TimeAPI
}

func NewDumpSource(inner Source, dir string, time chrono.TimeAPI) (DumpSource, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return DumpSource{}, err
	}
	return DumpSource{inner: inner, directory: dir, time: time}, nil
}

func (d DumpSource) Render(ctx context.Context, url string) (string, error) {
	page, err := d.inner.Render(ctx, url)
	if err != nil {
		return page, err
	}
	name := fmt.Sprintf("%s.html", d.time.Now().UTC().Format("20060102T150405.000000000"))
	err = os.WriteFile(filepath.Join(d.directory, name), []byte(page), 0600)
	if err != nil {
		slog.Warn("failed to write page dump", "name", name, "err", err)
	}
	return page, nil
}
