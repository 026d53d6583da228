package skim

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/parquet-go/parquet-go"

	"github.com/skimtools/pqskim/reader"
)

// Predicate decides row inclusion. Implementations wrap an expression
// evaluator; the engine only depends on this interface so the copy
// loop stays independent of the concrete evaluator.
type Predicate interface {
	// Columns lists the dataset columns the predicate reads. The
	// engine materializes only these while probing rows.
	Columns() []string

	// Rebind re-resolves the predicate against the schema of a new
	// physical file. The engine calls it whenever the scan crosses a
	// file boundary, before evaluating any row of the new file.
	Rebind(schema *parquet.Schema) error

	// Eval evaluates the predicate against one probed row.
	Eval(row map[string]any) (bool, error)
}

// Sink receives the rows that pass the predicate, in scan order.
type Sink interface {
	Append(row map[string]any) error
}

// Stats summarizes one finished pass.
type Stats struct {
	Read    int64
	Written int64
}

// Engine performs the single streaming pass that realizes the skim.
type Engine struct {
	logger log.Logger
}

func NewEngine(logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Engine{logger: logger}
}

// Run walks the chain once in logical order. For each row it probes
// only the predicate's columns, and only when the predicate accepts
// does it materialize the visible columns and append them to the sink.
// Output order is input logical order restricted to matches.
//
// Any read, evaluation, or append failure aborts the pass; the sink's
// state is then undefined. A pass matching zero rows is a success.
func (e *Engine) Run(chain *reader.Chain, pred Predicate, vis Visibility, sink Sink) (Stats, error) {
	var stats Stats

	cur := reader.NewCursor(chain, pred.Columns(), vis.Columns())
	defer func() { _ = cur.Close() }()

	total := chain.NumRows()
	for i := int64(0); i < total; i++ {
		crossed, err := cur.SeekTo(i)
		if err != nil {
			return stats, fmt.Errorf("position row %d: %w", i, err)
		}
		if crossed {
			if err := pred.Rebind(cur.FileSchema()); err != nil {
				return stats, fmt.Errorf("rebind selection to %s: %w", cur.FilePath(), err)
			}
			level.Debug(e.logger).Log("msg", "entering file", "path", cur.FilePath(), "row", i)
		}

		stats.Read++

		probe, err := cur.Probe()
		if err != nil {
			return stats, err
		}
		ok, err := pred.Eval(probe)
		if err != nil {
			return stats, fmt.Errorf("row %d: %w", i, err)
		}
		if !ok {
			continue
		}

		row, err := cur.Fetch()
		if err != nil {
			return stats, err
		}
		if err := sink.Append(row); err != nil {
			return stats, fmt.Errorf("append row %d: %w", i, err)
		}
		stats.Written++
	}

	level.Debug(e.logger).Log("msg", "pass complete", "read", stats.Read, "written", stats.Written)
	return stats, nil
}
