package reader

import (
	"github.com/parquet-go/parquet-go"
)

// ColumnNames returns the names of the schema's top-level leaf fields
// in schema order.
func ColumnNames(s *parquet.Schema) []string {
	fields := s.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name())
	}
	return names
}

// Project returns a schema containing only the named fields of s,
// keeping s's root name. Names that do not appear in s are ignored.
func Project(s *parquet.Schema, names []string) *parquet.Schema {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}

	group := parquet.Group{}
	for _, f := range s.Fields() {
		if keep[f.Name()] {
			group[f.Name()] = f
		}
	}
	return parquet.NewSchema(s.Name(), group)
}

// FieldTypeName returns a user-friendly type name for a parquet field.
//
// Logical types take precedence over physical types so STRING shows up
// as such rather than BYTE_ARRAY.
func FieldTypeName(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}

	if lt := field.Type().LogicalType(); lt != nil {
		switch s := lt.String(); s {
		case "STRING", "UTF8":
			return "STRING"
		case "DATE", "TIME", "TIMESTAMP", "DECIMAL", "UUID", "ENUM", "JSON", "BSON":
			return s
		}
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT32"
	case parquet.Double:
		return "FLOAT64"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}
