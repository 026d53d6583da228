package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

var (
	// ErrNoInput is returned when an input path or glob matches no files.
	ErrNoInput = errors.New("no input files matched")

	// ErrContainer is returned when a file's root schema name does not
	// match the requested container name.
	ErrContainer = errors.New("container not found in file")

	// ErrSchemaMismatch is returned when the files of a chain do not
	// share a single schema.
	ErrSchemaMismatch = errors.New("input files do not share a schema")
)

// source is one physical parquet file backing part of a chain.
type source struct {
	path   string
	file   *os.File
	pq     *parquet.File
	rows   int64
	offset int64 // logical index of this file's first row
}

// Chain presents one or more parquet files as a single logical row
// sequence with a common schema. Row order is the concatenation order
// of the files, which follows filepath.Glob's lexical ordering for
// glob and directory inputs.
//
// A Chain is read-only after Open and holds every file handle until
// Close is called.
type Chain struct {
	sources []*source
	schema  *parquet.Schema
	rows    int64
}

// Open resolves pattern to one or more parquet files and assembles
// them into a chain. The pattern can be a single file, a directory
// (all *.parquet files inside it), or a glob:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// When container is non-empty, every file's root schema name must
// equal it. All files must share one schema.
func Open(pattern, container string) (*Chain, error) {
	paths, err := expand(pattern)
	if err != nil {
		return nil, err
	}

	c := &Chain{}
	for _, path := range paths {
		src, err := openSource(path, container)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		if c.schema == nil {
			c.schema = src.pq.Schema()
		} else if !parquet.EqualNodes(c.schema, src.pq.Schema()) {
			_ = c.Close()
			_ = src.file.Close()
			return nil, fmt.Errorf("%w: %s", ErrSchemaMismatch, path)
		}
		src.offset = c.rows
		c.rows += src.rows
		c.sources = append(c.sources, src)
	}

	return c, nil
}

// expand turns an input pattern into the ordered list of file paths
// backing the chain.
func expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		info, err := os.Stat(pattern)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNoInput, pattern)
			}
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if info.IsDir() {
			pattern = filepath.Join(pattern, "*.parquet")
		} else {
			return []string{pattern}, nil
		}
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInput, pattern)
	}
	return matches, nil
}

func openSource(path, container string) (*source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pq, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	if container != "" && pq.Schema().Name() != container {
		_ = file.Close()
		return nil, fmt.Errorf("%w: want %q in %s, file has %q",
			ErrContainer, container, path, pq.Schema().Name())
	}

	return &source{
		path: path,
		file: file,
		pq:   pq,
		rows: pq.NumRows(),
	}, nil
}

// NumRows returns the total number of rows across every file of the chain.
func (c *Chain) NumRows() int64 { return c.rows }

// NumFiles returns the number of physical files backing the chain.
func (c *Chain) NumFiles() int { return len(c.sources) }

// Schema returns the schema shared by every file of the chain.
func (c *Chain) Schema() *parquet.Schema { return c.schema }

// ColumnNames returns the leaf column names in schema order.
func (c *Chain) ColumnNames() []string {
	return ColumnNames(c.schema)
}

// Locate resolves a logical row index to the backing file path and the
// file-local row index. No column data is read.
func (c *Chain) Locate(i int64) (path string, local int64) {
	fi, local := c.resolve(i)
	return c.sources[fi].path, local
}

// resolve maps a logical row index to (source index, file-local index).
func (c *Chain) resolve(i int64) (int, int64) {
	// Linear scan is fine: chains rarely span more than a handful of
	// files, and the engine's sequential pass makes the current file
	// the common case.
	for fi := len(c.sources) - 1; fi >= 0; fi-- {
		if i >= c.sources[fi].offset {
			return fi, i - c.sources[fi].offset
		}
	}
	return 0, i
}

// Close releases every file handle held by the chain. It is safe to
// call Close on a partially opened chain.
func (c *Chain) Close() error {
	var firstErr error
	for _, src := range c.sources {
		if err := src.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.sources = nil
	return firstErr
}
