package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spherical/pdf-composer/internal/domain"
)

// Staging reserves a temporary file in the destination directory. The
// document is written there and only renamed to its final name by Commit,
// so a failed job never leaves a partial file under the output name.
type Staging struct {
	final string
	path  string
	done  bool
}

// Stage creates the parent directories of finalPath and an empty staging
// file beside it.
func Stage(finalPath string) (*Staging, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.OutputError(fmt.Sprintf("cannot create output directory %s", dir), err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(finalPath)+".*.part")
	if err != nil {
		return nil, domain.OutputError(fmt.Sprintf("cannot create staging file in %s", dir), err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, domain.OutputError("cannot create staging file", err)
	}

	return &Staging{final: finalPath, path: path}, nil
}

// Path is the staging file to write to.
func (s *Staging) Path() string { return s.path }

// Final is the path the document will have after Commit.
func (s *Staging) Final() string { return s.final }

// Create truncates the staging file and opens it for writing.
func (s *Staging) Create() (*os.File, error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return nil, domain.OutputError(fmt.Sprintf("cannot open staging file %s", s.path), err)
	}
	return f, nil
}

// Commit moves the staging file over the final path.
func (s *Staging) Commit() error {
	if s.done {
		return domain.OutputError("staging file already finalized", nil)
	}
	if err := os.Chmod(s.path, 0o644); err != nil {
		return domain.OutputError(fmt.Sprintf("cannot set permissions on %s", s.path), err)
	}
	if err := os.Rename(s.path, s.final); err != nil {
		return domain.OutputError(fmt.Sprintf("cannot move output into place at %s", s.final), err)
	}
	s.done = true
	return nil
}

// Abort removes the staging file. It is a no-op after Commit, so it can be
// deferred unconditionally.
func (s *Staging) Abort() {
	if s.done {
		return
	}
	os.Remove(s.path)
	s.done = true
}
