package selection

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"github.com/parquet-go/parquet-go"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// CompileError reports an expression that failed to compile against
// the dataset schema.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("selection %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Predicate is the effective row filter: the logical AND of every
// collected clause, compiled as a CEL program against the dataset
// schema. An empty clause set compiles to the always-true predicate.
type Predicate struct {
	expr    string
	columns []string
	prg     cel.Program
}

// Compile combines clauses into one boolean expression and compiles it
// against schema. Every leaf column becomes a typed CEL variable, so a
// clause referencing an unknown column or producing a non-boolean
// result fails here, before any row is read.
func Compile(clauses []string, schema *parquet.Schema) (*Predicate, error) {
	expr := combine(clauses)

	env, err := newEnv(schema)
	if err != nil {
		return nil, fmt.Errorf("selection environment: %w", err)
	}

	ast, err := check(env, expr)
	if err != nil {
		return nil, err
	}

	columns, err := referencedColumns(ast, schema)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}

	return &Predicate{expr: expr, columns: columns, prg: prg}, nil
}

// combine joins clauses with logical AND. Each clause is parenthesized
// so operator precedence inside a clause cannot leak across clauses.
func combine(clauses []string) string {
	if len(clauses) == 0 {
		return "true"
	}
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = "(" + c + ")"
	}
	return strings.Join(parts, " && ")
}

// Expr returns the combined expression text.
func (p *Predicate) Expr() string { return p.expr }

// Columns returns the names of the dataset columns the predicate
// references, sorted. An always-true predicate references none.
func (p *Predicate) Columns() []string { return p.columns }

// Eval evaluates the predicate against one row. The row only needs to
// carry the referenced columns.
func (p *Predicate) Eval(row map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(row)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: result is %T, not bool", p.expr, out.Value())
	}
	return b, nil
}

// Rebind re-resolves the predicate against the schema of a new
// physical file. Chains guarantee a common schema, but per-file column
// layout can differ, so the program is rebuilt from the file's own
// schema whenever the scan crosses a file boundary.
func (p *Predicate) Rebind(schema *parquet.Schema) error {
	env, err := newEnv(schema)
	if err != nil {
		return fmt.Errorf("selection environment: %w", err)
	}
	ast, err := check(env, p.expr)
	if err != nil {
		return err
	}
	prg, err := env.Program(ast)
	if err != nil {
		return &CompileError{Expr: p.expr, Err: err}
	}
	p.prg = prg
	return nil
}

func newEnv(schema *parquet.Schema) (*cel.Env, error) {
	fields := schema.Fields()
	vars := make([]*exprpb.Decl, 0, len(fields))
	for _, f := range fields {
		vars = append(vars, decls.NewVar(f.Name(), celType(f)))
	}
	return cel.NewEnv(
		cel.Declarations(vars...),
		cel.CrossTypeNumericComparisons(true),
	)
}

func check(env *cel.Env, expr string) (*cel.Ast, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{Expr: expr, Err: issues.Err()}
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, &CompileError{
			Expr: expr,
			Err:  fmt.Errorf("result type is %s, not bool", ast.OutputType()),
		}
	}
	return ast, nil
}

// referencedColumns extracts the schema columns an expression actually
// reads, from the checked AST's reference map. This is what lets the
// scan materialize only predicate columns for rejected rows.
func referencedColumns(ast *cel.Ast, schema *parquet.Schema) ([]string, error) {
	checked, err := cel.AstToCheckedExpr(ast)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, f := range schema.Fields() {
		known[f.Name()] = true
	}

	seen := make(map[string]bool)
	var columns []string
	for _, ref := range checked.GetReferenceMap() {
		name := ref.GetName()
		if name == "" || !known[name] || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns, nil
}

// celType maps a parquet column type to the CEL type its values take
// after a projected read.
func celType(field parquet.Field) *exprpb.Type {
	if field.Type() == nil {
		return decls.Dyn
	}
	switch field.Type().Kind() {
	case parquet.Boolean:
		return decls.Bool
	case parquet.Int32, parquet.Int64, parquet.Int96:
		return decls.Int
	case parquet.Float, parquet.Double:
		return decls.Double
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return decls.String
	default:
		return decls.Dyn
	}
}
