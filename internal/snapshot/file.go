package snapshot

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the snapshot as an indented JSON array. Replace writes a
// temporary file next to the target, syncs it and renames it over the
// target, so readers only ever see a complete file.
type FileStore struct {
	path string
	tel  telemetry.API

	// beforeRename is called with the temp file path once it has been
	// written, tests use it to fail a write halfway.
	beforeRename func(tmp string) error
}

func NewFileStore(path string, tel telemetry.API) *FileStore {
	assert.NotEmptyStr(path)
	assert.NotNil(tel)
	return &FileStore{
		path: path,
		tel:  telemetry.NewScopedAPI("snapshot_file", tel),
	}
}

func (s *FileStore) Load(ctx context.Context) ([]posting.Posting, error) {
	contents, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []posting.Posting{}, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_load, err, s.path)
		return nil, err
	}

	var out []posting.Posting
	err = json.Unmarshal(contents, &out)
	if err != nil {
		err = fmt.Errorf("decode %s: %w", s.path, err)
		s.tel.ReportBroken(report_load, err)
		return nil, err
	}
	if out == nil {
		out = []posting.Posting{}
	}
	return out, nil
}

func (s *FileStore) Replace(ctx context.Context, postings []posting.Posting) error {
	err := s.replace(postings)
	if err != nil {
		s.tel.ReportBroken(report_replace, err, s.path)
		return err
	}
	s.tel.ReportDebug("replaced snapshot", telemetry.KV{Key: "count", Value: len(postings)})
	return nil
}

func (s *FileStore) replace(postings []posting.Posting) error {
	if postings == nil {
		postings = []posting.Posting{}
	}
	contents, err := json.MarshalIndent(postings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	_, err = tmp.Write(contents)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	err = tmp.Sync()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	err = tmp.Close()
	if err != nil {
		return err
	}

	if s.beforeRename != nil {
		err = s.beforeRename(tmpPath)
		if err != nil {
			return err
		}
	}

	err = os.Rename(tmpPath, s.path)
	if err != nil {
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	committed = true
	return nil
}
