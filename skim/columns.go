package skim

import (
	"path"
)

// Visibility is the resolved enabled/disabled state of every dataset
// column. It is built once, before any row is read, and never changes.
type Visibility struct {
	order   []string
	enabled map[string]bool
}

// ResolveColumns computes column visibility from the four directives,
// applied in precedence order:
//
//  1. every column starts enabled
//  2. disableAll disables every column
//  3. each name in disabled disables its matches
//  4. each name in enabled enables its matches — this always wins
//
// So an operator can disable everything and re-enable a whitelist, but
// cannot disable a column that was explicitly enabled in the same
// invocation. Directive names are glob patterns matched against real
// column names; patterns matching nothing are accepted silently.
func ResolveColumns(all []string, disableAll bool, disabled, enabled []string) Visibility {
	v := Visibility{
		order:   all,
		enabled: make(map[string]bool, len(all)),
	}

	for _, name := range all {
		v.enabled[name] = true
	}
	if disableAll {
		for _, name := range all {
			v.enabled[name] = false
		}
	}
	// Redundant with disableAll when both are given, kept as its own
	// pass so the precedence list reads the way it is specified.
	for _, pattern := range disabled {
		v.set(pattern, false)
	}
	for _, pattern := range enabled {
		v.set(pattern, true)
	}

	return v
}

func (v Visibility) set(pattern string, state bool) {
	for _, name := range v.order {
		if match(pattern, name) {
			v.enabled[name] = state
		}
	}
}

// match treats pattern as a glob; a malformed pattern falls back to
// literal comparison.
func match(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return ok
}

// Enabled reports whether the named column is visible in the output.
func (v Visibility) Enabled(name string) bool {
	return v.enabled[name]
}

// Columns returns the enabled column names in schema order.
func (v Visibility) Columns() []string {
	columns := make([]string, 0, len(v.order))
	for _, name := range v.order {
		if v.enabled[name] {
			columns = append(columns, name)
		}
	}
	return columns
}
