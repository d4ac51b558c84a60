package filter

import "fmt"

// UnsupportedOperatorError is returned for any $-prefixed key outside the
// supported operator set.
type UnsupportedOperatorError struct {
	Operator string
}

func (e UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %s", e.Operator)
}

// InvalidOperandError is returned when an operator is given an operand of
// the wrong shape, e.g. $in with a scalar or $between with a three-element
// array.
type InvalidOperandError struct {
	Operator string
	Value    any
	Want     string
}

func (e InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid value for %s operator (must be %s): %v", e.Operator, e.Want, e.Value)
}

// InvalidFilterError is returned when the document itself is malformed:
// empty operator objects, objects without a $-prefixed first key, or a
// combinator used as a field operator.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e InvalidFilterError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

type FieldNotAllowedError struct {
	Field string
}

func (e FieldNotAllowedError) Error() string {
	return fmt.Sprintf("field not allowed: %s", e.Field)
}

type InvalidFieldNameError struct {
	Field string
}

func (e InvalidFieldNameError) Error() string {
	return fmt.Sprintf("invalid field name: %s", e.Field)
}

type InvalidOrderDirectionError struct {
	Field string
	Value any
}

func (e InvalidOrderDirectionError) Error() string {
	return fmt.Sprintf("invalid order direction for field %s: %v (must be 1 or -1)", e.Field, e.Value)
}
