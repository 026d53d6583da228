// Package skim contains the streaming filter-copy engine and the
// column visibility resolver.
//
// The engine walks a reader.Chain once, evaluates an effective
// predicate per row while materializing only the columns the predicate
// references, and appends passing rows, restricted to the visible
// columns, to a Sink.
package skim
