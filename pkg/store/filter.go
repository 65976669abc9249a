package store

import (
	"fmt"
	"strings"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// Field names a metadata field usable in equality predicates. Only the
// whitelisted fields below compile to SQL; anything else panics at filter
// construction, which keeps malformed filters out of query strings.
type Field string

const (
	FieldType             Field = "type"
	FieldPaintingID       Field = "painting_id"
	FieldArtist           Field = "artist"
	FieldSourcePaintingID Field = "source_painting_id"
)

var fieldColumns = map[Field]string{
	FieldType:             "type",
	FieldPaintingID:       "painting_id",
	FieldArtist:           "artist",
	FieldSourcePaintingID: "source_painting_id",
}

// Filter is a boolean combination of equality predicates over chunk
// metadata. It evaluates in-process for the memory store and compiles to a
// WHERE fragment for Postgres.
type Filter interface {
	// Matches reports whether the chunk satisfies the filter.
	Matches(c models.Chunk) bool
	// sql appends the predicate's placeholder arguments to args and
	// returns the SQL fragment referencing them.
	sql(args *[]any) string
}

type eqFilter struct {
	field Field
	value string
}

type andFilter struct{ filters []Filter }

type orFilter struct{ filters []Filter }

// Eq matches chunks whose metadata field equals value.
func Eq(field Field, value string) Filter {
	if _, ok := fieldColumns[field]; !ok {
		panic(fmt.Sprintf("store: unknown filter field %q", field))
	}
	return eqFilter{field: field, value: value}
}

// And matches chunks satisfying every sub-filter.
func And(filters ...Filter) Filter {
	return andFilter{filters: filters}
}

// Or matches chunks satisfying at least one sub-filter.
func Or(filters ...Filter) Filter {
	return orFilter{filters: filters}
}

func (f eqFilter) Matches(c models.Chunk) bool {
	switch f.field {
	case FieldType:
		return string(c.Type) == f.value
	case FieldPaintingID:
		return c.PaintingID == f.value
	case FieldArtist:
		return c.Artist == f.value
	case FieldSourcePaintingID:
		return c.SourcePaintingID == f.value
	}
	return false
}

func (f eqFilter) sql(args *[]any) string {
	*args = append(*args, f.value)
	return fmt.Sprintf("%s = $%d", fieldColumns[f.field], len(*args))
}

func (f andFilter) Matches(c models.Chunk) bool {
	for _, sub := range f.filters {
		if !sub.Matches(c) {
			return false
		}
	}
	return true
}

func (f andFilter) sql(args *[]any) string {
	return joinSQL(f.filters, " AND ", "TRUE", args)
}

func (f orFilter) Matches(c models.Chunk) bool {
	for _, sub := range f.filters {
		if sub.Matches(c) {
			return true
		}
	}
	return false
}

func (f orFilter) sql(args *[]any) string {
	return joinSQL(f.filters, " OR ", "FALSE", args)
}

func joinSQL(filters []Filter, sep, empty string, args *[]any) string {
	if len(filters) == 0 {
		return empty
	}
	parts := make([]string, 0, len(filters))
	for _, sub := range filters {
		parts = append(parts, sub.sql(args))
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// CompileSQL renders the filter as a WHERE fragment. args must already hold
// any parameters that precede the filter's own (placeholder numbering
// continues from len(args)); the returned slice carries the appended values.
func CompileSQL(f Filter, args []any) (string, []any) {
	if f == nil {
		return "TRUE", args
	}
	clause := f.sql(&args)
	return clause, args
}
