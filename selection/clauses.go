package selection

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FileError reports a selection file that could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("selection file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Collect gathers predicate clauses in effective order: inline clauses
// first, in the order given, then each selection file's clauses in
// file order.
//
// Selection files contain one boolean expression per line. Lines are
// whitespace-trimmed; empty lines and lines starting with # are
// skipped. An unreadable file aborts the whole collection.
func Collect(inline []string, files []string) ([]string, error) {
	clauses := make([]string, 0, len(inline))
	clauses = append(clauses, inline...)

	for _, path := range files {
		fromFile, err := readClauseFile(path)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, fromFile...)
	}

	return clauses, nil
}

func readClauseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	var clauses []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		clauses = append(clauses, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	return clauses, nil
}
