// Package query compiles user supplied conference filters into a plan the
// storage layer can execute.  Ordered-index stores only allow range
// predicates on one property per query, and that property must lead the
// sort order; Compile enforces both rules before anything reaches storage.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFilter is returned for an unknown field or operator, or a
	// value that cannot be coerced to the field's type.
	ErrInvalidFilter = errors.New("filter contains invalid field or operator")
	// ErrMultipleInequalityFields is returned when inequality operators are
	// used on more than one field.
	ErrMultipleInequalityFields = errors.New("inequality filter is allowed on only one field")
)

// Stored property names a filter can target.
const (
	FieldCity         = "city"
	FieldTopics       = "topics"
	FieldMonth        = "month"
	FieldMaxAttendees = "maxAttendees"
	FieldName         = "name"
)

// Operator is a comparison in storage form ("=", ">", ...).
type Operator string

const (
	OpEQ   Operator = "="
	OpGT   Operator = ">"
	OpGTEQ Operator = ">="
	OpLT   Operator = "<"
	OpLTEQ Operator = "<="
	OpNE   Operator = "!="
)

var fields = map[string]string{
	"CITY":          FieldCity,
	"TOPIC":         FieldTopics,
	"MONTH":         FieldMonth,
	"MAX_ATTENDEES": FieldMaxAttendees,
}

var operators = map[string]Operator{
	"EQ":   OpEQ,
	"GT":   OpGT,
	"GTEQ": OpGTEQ,
	"LT":   OpLT,
	"LTEQ": OpLTEQ,
	"NE":   OpNE,
}

// Filter is a single user supplied (field, operator, value) triple using the
// public enum names, e.g. {MONTH, GT, "6"}.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Predicate is a resolved filter.  Value holds an int for integer fields and
// a string otherwise.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// Plan is the compiled form of a filter sequence.  Order lists the sort
// properties, all ascending; storage appends its own identity as the final
// tiebreak.
type Plan struct {
	InequalityField string
	Predicates      []Predicate
	Order           []string
}

// IsIntField reports whether values of field are compared as integers.
func IsIntField(field string) bool {
	return field == FieldMonth || field == FieldMaxAttendees
}

// Compile validates filters and builds the plan.  Filters are applied as a
// conjunction in input order.
func Compile(filters []Filter) (Plan, error) {
	var plan Plan

	for _, f := range filters {
		field, ok := fields[strings.TrimSpace(f.Field)]
		if !ok {
			return Plan{}, fmt.Errorf("field %q: %w", f.Field, ErrInvalidFilter)
		}
		op, ok := operators[strings.TrimSpace(f.Operator)]
		if !ok {
			return Plan{}, fmt.Errorf("operator %q: %w", f.Operator, ErrInvalidFilter)
		}

		if op != OpEQ {
			if plan.InequalityField != "" && plan.InequalityField != field {
				return Plan{}, fmt.Errorf("%s and %s: %w", plan.InequalityField, field, ErrMultipleInequalityFields)
			}
			plan.InequalityField = field
		}

		var value any = f.Value
		if IsIntField(field) {
			n, err := strconv.Atoi(strings.TrimSpace(f.Value))
			if err != nil {
				return Plan{}, fmt.Errorf("value %q for %s: %w", f.Value, field, ErrInvalidFilter)
			}
			value = n
		}

		plan.Predicates = append(plan.Predicates, Predicate{Field: field, Operator: op, Value: value})
	}

	if plan.InequalityField != "" {
		plan.Order = []string{plan.InequalityField, FieldName}
	} else {
		plan.Order = []string{FieldName}
	}
	return plan, nil
}

// Compare applies op to the ordering result of two values (-1, 0, 1).
func (op Operator) Compare(cmp int) bool {
	switch op {
	case OpEQ:
		return cmp == 0
	case OpGT:
		return cmp > 0
	case OpGTEQ:
		return cmp >= 0
	case OpLT:
		return cmp < 0
	case OpLTEQ:
		return cmp <= 0
	case OpNE:
		return cmp != 0
	}
	return false
}
