package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// OutputIOError reports an output file that could not be created or written.
type OutputIOError struct {
	Path string
	Err  error
}

func (e *OutputIOError) Error() string {
	return fmt.Sprintf("failed to write output file %s: %v", e.Path, e.Err)
}

func (e *OutputIOError) Unwrap() error {
	return e.Err
}

type stagedFile struct {
	tmp  string
	dest string
}

// Stager writes artifacts next to their destination under temporary names
// and moves them into place together on Commit, so a failed run leaves
// existing files untouched.
type Stager struct {
	files []stagedFile
}

func NewStager() *Stager {
	return &Stager{}
}

// Stage writes data to a temporary file in path's directory.
func (s *Stager) Stage(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &OutputIOError{Path: path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return &OutputIOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &OutputIOError{Path: path, Err: err}
	}

	s.files = append(s.files, stagedFile{tmp: tmp, dest: path})
	return nil
}

// Commit renames every staged file to its destination and returns the
// destinations written. Files being replaced are kept as backups until every
// rename succeeded; on failure the destinations are restored.
func (s *Stager) Commit() ([]string, error) {
	for _, f := range s.files {
		if info, err := os.Stat(f.dest); err == nil && info.IsDir() {
			s.Discard()
			return nil, &OutputIOError{Path: f.dest, Err: fmt.Errorf("is a directory")}
		}
	}

	var done []stagedFile // tmp holds the backup path, "" when dest was new
	for i, f := range s.files {
		backup := ""
		if _, err := os.Lstat(f.dest); err == nil {
			backup = f.tmp + ".bak"
			if err := os.Rename(f.dest, backup); err != nil {
				return nil, s.rollback(i, done, &OutputIOError{Path: f.dest, Err: err})
			}
		}
		if err := os.Rename(f.tmp, f.dest); err != nil {
			if backup != "" {
				os.Rename(backup, f.dest)
			}
			return nil, s.rollback(i, done, &OutputIOError{Path: f.dest, Err: err})
		}
		done = append(done, stagedFile{tmp: backup, dest: f.dest})
	}

	written := make([]string, 0, len(done))
	for _, d := range done {
		if d.tmp != "" {
			os.Remove(d.tmp)
		}
		written = append(written, d.dest)
	}
	s.files = nil
	return written, nil
}

// rollback restores committed destinations in reverse order and discards the
// staged files from index i on.
func (s *Stager) rollback(i int, done []stagedFile, err error) error {
	for k := len(done) - 1; k >= 0; k-- {
		if done[k].tmp != "" {
			os.Rename(done[k].tmp, done[k].dest)
		} else {
			os.Remove(done[k].dest)
		}
	}
	s.files = s.files[i:]
	s.Discard()
	return err
}

// Discard removes all staged files that were not committed.
func (s *Stager) Discard() {
	for _, f := range s.files {
		os.Remove(f.tmp)
	}
	s.files = nil
}
