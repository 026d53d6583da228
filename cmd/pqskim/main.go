// Command pqskim copies selected rows and columns out of one or more
// parquet files into a new parquet file.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/skimtools/pqskim/output"
	"github.com/skimtools/pqskim/reader"
	"github.com/skimtools/pqskim/selection"
	"github.com/skimtools/pqskim/skim"
)

// config is the full flag surface of a run.
type config struct {
	verbose        bool
	input          string
	container      string
	selections     []string
	selectionFiles []string
	enableColumns  []string
	disableColumns []string
	disableAll     bool
	output         string
	replace        bool
}

func registerFlags(app *kingpin.Application, cfg *config) {
	app.Flag("verbose", "Print more detailed output.").
		Short('v').BoolVar(&cfg.verbose)
	app.Flag("input", "The path (a file, directory, or glob) to the input data.").
		Short('i').Required().StringVar(&cfg.input)
	app.Flag("container", "The expected root schema name of the input files.").
		Short('c').StringVar(&cfg.container)
	app.Flag("selection", "A selection expression to apply to the rows.").
		Short('s').StringsVar(&cfg.selections)
	app.Flag("selection-file", "A file containing selection expressions, one per line. Lines beginning with # are comments.").
		Short('S').StringsVar(&cfg.selectionFiles)
	app.Flag("enable-columns", "Enable a column (overrides column disabling). Accepts glob patterns.").
		Short('e').StringsVar(&cfg.enableColumns)
	app.Flag("disable-columns", "Disable a column. Accepts glob patterns.").
		Short('d').StringsVar(&cfg.disableColumns)
	app.Flag("disable-all-columns", "Disable all columns.").
		Short('D').BoolVar(&cfg.disableAll)
	app.Flag("output", "The output path for the skimmed parquet file.").
		Short('o').Default("output.parquet").StringVar(&cfg.output)
	app.Flag("replace", "Replace the output file if it already exists.").
		Short('r').BoolVar(&cfg.replace)
}

func newLogger(verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

func main() {
	app := kingpin.New("pqskim", "Skim rows from parquet datasets into a new file.")
	var cfg config
	registerFlags(app, &cfg)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(cfg.verbose)
	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "pqskim: %v\n", err)
		os.Exit(1)
	}
}

// run performs one skim in the required stage order: open the input
// chain, resolve column visibility, collect and compile the selection,
// and only then create the output file and start copying rows. Every
// setup failure therefore surfaces before the destination exists.
func run(cfg config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	chain, err := reader.Open(cfg.input, cfg.container)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = chain.Close() }()

	level.Debug(logger).Log(
		"msg", "opened input",
		"path", cfg.input,
		"files", chain.NumFiles(),
		"rows", humanize.Comma(chain.NumRows()),
	)

	vis := skim.ResolveColumns(chain.ColumnNames(), cfg.disableAll, cfg.disableColumns, cfg.enableColumns)
	if len(vis.Columns()) == 0 {
		return fmt.Errorf("resolve columns: every column is disabled, output would be empty")
	}

	clauses, err := selection.Collect(cfg.selections, cfg.selectionFiles)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}
	pred, err := selection.Compile(clauses, chain.Schema())
	if err != nil {
		return fmt.Errorf("compile selection: %w", err)
	}
	level.Debug(logger).Log("msg", "compiled selection", "expr", pred.Expr())

	if cfg.verbose {
		output.WriteSchemaTable(os.Stderr, chain.Schema(), vis.Enabled)
	}

	sink, err := output.Create(cfg.output, reader.Project(chain.Schema(), vis.Columns()), cfg.replace)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	stats, err := skim.NewEngine(logger).Run(chain, pred, vis, sink)
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("copy rows: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	level.Info(logger).Log(
		"msg", "skim complete",
		"rows_read", humanize.Comma(stats.Read),
		"rows_written", humanize.Comma(stats.Written),
		"output", cfg.output,
	)
	return nil
}
