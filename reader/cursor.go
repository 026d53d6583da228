package reader

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// Cursor walks a chain in logical row order while materializing as
// little column data as possible. For every physical file it keeps two
// projected readers: a probe reader over only the probe columns
// (typically the columns a selection predicate references) and a fetch
// reader over only the fetch columns (the columns retained for output).
//
// Probing a row reads probe columns only; fetching reads fetch columns
// only. Rows that are probed but never fetched cost no fetch-column I/O.
type Cursor struct {
	chain        *Chain
	probeColumns []string
	fetchColumns []string

	fileIndex int   // index into chain.sources, -1 before the first SeekTo
	local     int64 // file-local index of the current row

	probe     *parquet.GenericReader[map[string]any]
	fetch     *parquet.GenericReader[map[string]any]
	probeNext int64 // file-local index the probe reader is positioned at
	fetchNext int64
}

// NewCursor creates a cursor over c. probeColumns may be empty, in
// which case Probe reads nothing and returns an empty row.
func NewCursor(c *Chain, probeColumns, fetchColumns []string) *Cursor {
	return &Cursor{
		chain:        c,
		probeColumns: probeColumns,
		fetchColumns: fetchColumns,
		fileIndex:    -1,
	}
}

// SeekTo positions the cursor at logical row i without reading any
// column data. It reports whether the move crossed into a different
// physical file, in which case any schema binding held by the caller
// must be refreshed against FileSchema before evaluating the row.
func (cur *Cursor) SeekTo(i int64) (crossed bool, err error) {
	fi, local := cur.chain.resolve(i)
	if fi != cur.fileIndex {
		if err := cur.enterFile(fi); err != nil {
			return false, err
		}
		crossed = true
	}
	cur.local = local
	return crossed, nil
}

// enterFile swaps the projected readers over to the chain's fi-th file.
func (cur *Cursor) enterFile(fi int) error {
	cur.closeReaders()

	src := cur.chain.sources[fi]
	fileSchema := src.pq.Schema()
	if len(cur.probeColumns) > 0 {
		cur.probe = parquet.NewGenericReader[map[string]any](src.pq, Project(fileSchema, cur.probeColumns))
	}
	cur.fetch = parquet.NewGenericReader[map[string]any](src.pq, Project(fileSchema, cur.fetchColumns))

	cur.fileIndex = fi
	cur.probeNext = 0
	cur.fetchNext = 0
	return nil
}

// FileSchema returns the schema of the physical file backing the
// current row.
func (cur *Cursor) FileSchema() *parquet.Schema {
	return cur.chain.sources[cur.fileIndex].pq.Schema()
}

// FilePath returns the path of the physical file backing the current row.
func (cur *Cursor) FilePath() string {
	return cur.chain.sources[cur.fileIndex].path
}

// Probe materializes only the probe columns of the current row.
func (cur *Cursor) Probe() (map[string]any, error) {
	if cur.probe == nil {
		return map[string]any{}, nil
	}
	row, err := cur.readOne(cur.probe, &cur.probeNext)
	if err != nil {
		return nil, fmt.Errorf("probe row %d of %s: %w", cur.local, cur.FilePath(), err)
	}
	return row, nil
}

// Fetch materializes the fetch columns of the current row.
func (cur *Cursor) Fetch() (map[string]any, error) {
	row, err := cur.readOne(cur.fetch, &cur.fetchNext)
	if err != nil {
		return nil, fmt.Errorf("fetch row %d of %s: %w", cur.local, cur.FilePath(), err)
	}
	return row, nil
}

// readOne reads the current row from r, seeking first if r is not
// already positioned there. The sequential pass keeps seeks rare: the
// probe reader advances in lockstep with the scan, and the fetch
// reader only jumps over rejected rows.
func (cur *Cursor) readOne(r *parquet.GenericReader[map[string]any], next *int64) (map[string]any, error) {
	if *next != cur.local {
		if err := r.SeekToRow(cur.local); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
	}

	buf := []map[string]any{make(map[string]any)}
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	*next = cur.local + 1
	return buf[0], nil
}

func (cur *Cursor) closeReaders() {
	// The readers only wrap the chain's already open parquet files, so
	// closing them releases buffers, not file handles.
	if cur.probe != nil {
		_ = cur.probe.Close()
		cur.probe = nil
	}
	if cur.fetch != nil {
		_ = cur.fetch.Close()
		cur.fetch = nil
	}
}

// Close releases the cursor's readers. The chain itself stays open.
func (cur *Cursor) Close() error {
	cur.closeReaders()
	return nil
}
