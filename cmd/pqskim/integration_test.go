package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/skimtools/pqskim/output"
	"github.com/skimtools/pqskim/reader"
	"github.com/skimtools/pqskim/selection"
)

type eventRow struct {
	ID     int64   `parquet:"id"`
	Energy float64 `parquet:"energy"`
	Label  string  `parquet:"label"`
}

func writeEventFile(t *testing.T, dir, name string, rows []eventRow) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[eventRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return path
}

// readBack loads every row of a parquet file as maps.
func readBack(t *testing.T, path string) []map[string]any {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	pq, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		t.Fatalf("%s is not a valid parquet file: %v", path, err)
	}

	r := parquet.NewGenericReader[map[string]any](pq, pq.Schema())
	defer func() { _ = r.Close() }()

	n := int(pq.NumRows())
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = make(map[string]any)
	}
	if n == 0 {
		return nil
	}
	if got, err := r.Read(rows); got != n {
		t.Fatalf("read back %d rows (err=%v), want %d", got, err, n)
	}
	return rows
}

func sampleEvents() []eventRow {
	return []eventRow{
		{ID: 1, Energy: 1.0, Label: "a"},
		{ID: 2, Energy: 5.0, Label: "b"},
		{ID: 3, Energy: 10.0, Label: "c"},
	}
}

func TestRun_SelectionSkim(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{
		input:      input,
		selections: []string{"energy > 3.0"},
		output:     out,
	}
	if err := run(cfg, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	rows := readBack(t, out)
	wantEnergy := []float64{5.0, 10.0}
	if len(rows) != len(wantEnergy) {
		t.Fatalf("output has %d rows, want %d", len(rows), len(wantEnergy))
	}
	for i, want := range wantEnergy {
		if rows[i]["energy"] != want {
			t.Errorf("row %d energy = %v, want %v", i, rows[i]["energy"], want)
		}
	}
}

func TestRun_TwoClauses(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{
		input:      input,
		selections: []string{"energy > 3.0", "energy < 8.0"},
		output:     out,
	}
	if err := run(cfg, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	rows := readBack(t, out)
	if len(rows) != 1 || rows[0]["energy"] != 5.0 {
		t.Fatalf("output rows = %v, want exactly energy=5.0", rows)
	}
}

func TestRun_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	events := sampleEvents()
	input := writeEventFile(t, tmpDir, "events.parquet", events)
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{input: input, output: out}
	if err := run(cfg, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	rows := readBack(t, out)
	if len(rows) != len(events) {
		t.Fatalf("output has %d rows, want %d", len(rows), len(events))
	}
	for i, want := range events {
		got := rows[i]
		if got["id"] != want.ID || got["energy"] != want.Energy || got["label"] != want.Label {
			t.Errorf("row %d = %v, want %+v", i, got, want)
		}
	}
}

func TestRun_SelectionFileAndMultipleInputs(t *testing.T) {
	tmpDir := t.TempDir()
	writeEventFile(t, tmpDir, "a.parquet", sampleEvents()[:2])
	writeEventFile(t, tmpDir, "b.parquet", sampleEvents()[2:])

	cuts := filepath.Join(tmpDir, "cuts.txt")
	if err := os.WriteFile(cuts, []byte("# keep hard events\nenergy > 3.0\n"), 0o644); err != nil {
		t.Fatalf("failed to write selection file: %v", err)
	}

	out := filepath.Join(tmpDir, "out.parquet")
	cfg := config{
		input:          filepath.Join(tmpDir, "*.parquet"),
		selectionFiles: []string{cuts},
		output:         out,
	}
	if err := run(cfg, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	rows := readBack(t, out)
	if len(rows) != 2 {
		t.Fatalf("output has %d rows, want 2", len(rows))
	}
}

func TestRun_ColumnRestriction(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{
		input:         input,
		disableAll:    true,
		enableColumns: []string{"energy"},
		output:        out,
	}
	if err := run(cfg, nil); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	chain, err := reader.Open(out, "")
	if err != nil {
		t.Fatalf("failed to reopen output: %v", err)
	}
	defer func() { _ = chain.Close() }()

	columns := chain.ColumnNames()
	if len(columns) != 1 || columns[0] != "energy" {
		t.Errorf("output columns = %v, want [energy]", columns)
	}
}

func TestRun_OutputExists(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())

	out := filepath.Join(tmpDir, "out.parquet")
	seed := []byte("precious data")
	if err := os.WriteFile(out, seed, 0o644); err != nil {
		t.Fatalf("failed to seed output: %v", err)
	}

	cfg := config{input: input, output: out}
	err := run(cfg, nil)
	if !errors.Is(err, output.ErrExists) {
		t.Fatalf("run() error = %v, want ErrExists", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read back output: %v", err)
	}
	if string(got) != string(seed) {
		t.Errorf("existing output was modified: %q", got)
	}

	// With replace the same run succeeds.
	cfg.replace = true
	if err := run(cfg, nil); err != nil {
		t.Errorf("run() with replace error = %v", err)
	}
}

func TestRun_MissingSelectionFile(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{
		input:          input,
		selectionFiles: []string{filepath.Join(tmpDir, "nope.txt")},
		output:         out,
	}
	err := run(cfg, nil)

	var fileErr *selection.FileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("run() error = %v, want *selection.FileError", err)
	}

	// The failure happens before the output file is created.
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after failed run")
	}
}

func TestRun_BadSelection(t *testing.T) {
	tmpDir := t.TempDir()
	input := writeEventFile(t, tmpDir, "events.parquet", sampleEvents())
	out := filepath.Join(tmpDir, "out.parquet")

	cfg := config{
		input:      input,
		selections: []string{"momentum > 3.0"},
		output:     out,
	}
	err := run(cfg, nil)

	var compileErr *selection.CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("run() error = %v, want *selection.CompileError", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output file exists after failed run")
	}
}

func TestRun_MissingInput(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := config{
		input:  filepath.Join(tmpDir, "*.parquet"),
		output: filepath.Join(tmpDir, "out.parquet"),
	}
	if err := run(cfg, nil); !errors.Is(err, reader.ErrNoInput) {
		t.Fatalf("run() error = %v, want ErrNoInput", err)
	}
}
