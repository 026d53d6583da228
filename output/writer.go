// Package output owns the destination parquet file of a skim and the
// human-readable rendering of the resolved schema.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ErrExists is returned when the destination path is already taken and
// replacement was not requested. The existing file is left untouched.
var ErrExists = errors.New("output file already exists")

// Sink writes skimmed rows to a new parquet file. It is the only
// writer of that file.
type Sink struct {
	path   string
	file   *os.File
	writer *parquet.GenericWriter[map[string]any]
}

// Create opens the destination file and binds a parquet writer to it
// with the given output schema. Unless replace is set, creation fails
// with ErrExists when the path is taken, without modifying a byte of
// the existing file.
func Create(path string, schema *parquet.Schema, replace bool) (*Sink, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if replace {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	return &Sink{
		path:   path,
		file:   f,
		writer: parquet.NewGenericWriter[map[string]any](f, schema),
	}, nil
}

// Path returns the destination path.
func (s *Sink) Path() string { return s.path }

// Append writes one row. Rows appear in the output in Append order.
func (s *Sink) Append(row map[string]any) error {
	if _, err := s.writer.Write([]map[string]any{row}); err != nil {
		return fmt.Errorf("write row to %s: %w", s.path, err)
	}
	return nil
}

// Close flushes buffered row groups, writes the parquet footer, and
// commits the file to stable storage. The sink must not be used after
// Close.
func (s *Sink) Close() error {
	if err := s.writer.Close(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("finalize %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	return nil
}
