package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/parquet-go/parquet-go"

	"github.com/skimtools/pqskim/reader"
)

// WriteSchemaTable renders the source schema and the resolved
// visibility of each column as a text table. Used by verbose mode so
// the operator can see exactly which columns the output will carry.
func WriteSchemaTable(w io.Writer, schema *parquet.Schema, enabled func(string) bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Type", "Status"})

	for _, f := range schema.Fields() {
		status := "disabled"
		if enabled(f.Name()) {
			status = "enabled"
		}
		table.Append([]string{f.Name(), reader.FieldTypeName(f), status})
	}

	table.Render()
}
