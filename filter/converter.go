package filter

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Converter translates MongoDB-style filter documents into SQL conditions
// with ?-style placeholders and a matching list of parameter values.
//
// A Converter holds no per-call state and is safe for concurrent use. The
// zero value is usable and allows every lexically valid field.
type Converter struct {
	allowedFields    []string
	disallowedFields []string
	emptyCondition   string
}

// NewConverter creates a new Converter with the given options.
func NewConverter(options ...Option) *Converter {
	converter := &Converter{}
	for _, option := range options {
		if option.f != nil {
			option.f(converter)
		}
	}
	return converter
}

// Convert converts a MongoDB filter query into SQL conditions and values.
// The conditions use ? placeholders; the Nth placeholder corresponds to
// the Nth value. Use DollarPlaceholders to renumber for drivers that want
// $1-style parameters.
func (c *Converter) Convert(query []byte) (conditions string, values []any, err error) {
	if len(bytes.TrimSpace(query)) == 0 {
		return c.emptyCondition, nil, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(query, &doc); err != nil {
		return "", nil, err
	}
	return c.ConvertMap(doc)
}

// ConvertMap is Convert for an already-decoded filter document.
func (c *Converter) ConvertMap(doc map[string]any) (string, []any, error) {
	result, values, err := c.convertDocument(sortedEntries(doc), false)
	if err != nil {
		return "", nil, err
	}
	if result.sql == "" {
		return c.emptyCondition, nil, nil
	}
	return result.sql, values, nil
}

// cond is one translated condition and whether it is already a single
// paren group, so callers know when wrapping is redundant.
type cond struct {
	sql     string
	grouped bool
}

func (c cond) group() string {
	if c.grouped {
		return c.sql
	}
	return "(" + c.sql + ")"
}

// docEntry is one key/value pair of a filter document. Map input walks in
// sorted key order so output is deterministic; BSON input keeps the
// caller's order.
type docEntry struct {
	key   string
	value any
}

func sortedEntries(doc map[string]any) []docEntry {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]docEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, docEntry{key: key, value: doc[key]})
	}
	return entries
}

func asDocEntries(v any) ([]docEntry, bool) {
	switch v := v.(type) {
	case map[string]any:
		return sortedEntries(v), true
	case []docEntry:
		return v, true
	default:
		return nil, false
	}
}

func asDocList(v any) ([][]docEntry, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	var docs [][]docEntry
	for _, e := range list {
		entries, ok := asDocEntries(e)
		if !ok {
			return nil, false
		}
		docs = append(docs, entries)
	}
	return docs, true
}

// convertDocument walks one document level. Combinator keys recurse into
// sub-filters, $not negates a nested document, anything else is a field
// condition. Parts join with AND; a nested multi-part result takes one
// paren group, the top level stays bare.
func (c *Converter) convertDocument(entries []docEntry, nested bool) (cond, []any, error) {
	var conditions []cond
	var values []any

	for _, entry := range entries {
		result, vs, err := c.convertEntry(entry)
		if err != nil {
			return cond{}, nil, err
		}
		if result.sql == "" {
			continue
		}
		conditions = append(conditions, result)
		values = append(values, vs...)
	}

	switch len(conditions) {
	case 0:
		return cond{}, nil, nil
	case 1:
		return conditions[0], values, nil
	}

	parts := make([]string, len(conditions))
	for i, condition := range conditions {
		parts[i] = condition.sql
	}
	result := cond{sql: strings.Join(parts, " AND ")}
	if nested {
		result = cond{sql: "(" + result.sql + ")", grouped: true}
	}
	return result, values, nil
}

func (c *Converter) convertEntry(entry docEntry) (cond, []any, error) {
	if strings.HasPrefix(entry.key, "$") {
		op, err := mapOperator(entry.key)
		if err != nil {
			return cond{}, nil, err
		}
		switch {
		case op.isCombinator():
			return c.convertCombinator(entry.key, op, entry.value)
		case op == opNot:
			return c.convertNotDocument(entry.key, entry.value)
		default:
			return cond{}, nil, InvalidFilterError{Field: entry.key, Reason: "operator not allowed at document level"}
		}
	}
	return c.convertField(entry.key, entry.value)
}

func (c *Converter) convertCombinator(key string, op operator, value any) (cond, []any, error) {
	docs, ok := asDocList(value)
	if !ok {
		return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "an array of documents"}
	}

	var subs []cond
	var values []any
	for _, doc := range docs {
		sub, vs, err := c.convertDocument(doc, true)
		if err != nil {
			return cond{}, nil, err
		}
		if sub.sql == "" {
			continue
		}
		subs = append(subs, sub)
		values = append(values, vs...)
	}
	if len(subs) == 0 {
		return cond{}, nil, nil
	}

	if op == opNor {
		if len(subs) == 1 {
			return cond{sql: "NOT " + subs[0].group()}, values, nil
		}
		parts := make([]string, len(subs))
		for i, sub := range subs {
			parts[i] = sub.sql
		}
		return cond{sql: "NOT (" + strings.Join(parts, " OR ") + ")"}, values, nil
	}

	if len(subs) == 1 {
		return subs[0], values, nil
	}
	connective := " AND "
	if op == opOr {
		connective = " OR "
	}
	parts := make([]string, len(subs))
	for i, sub := range subs {
		parts[i] = sub.group()
	}
	return cond{sql: "(" + strings.Join(parts, connective) + ")", grouped: true}, values, nil
}

func (c *Converter) convertNotDocument(key string, value any) (cond, []any, error) {
	entries, ok := asDocEntries(value)
	if !ok {
		return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "a document"}
	}

	inner, values, err := c.convertDocument(entries, true)
	if err != nil {
		return cond{}, nil, err
	}
	if inner.sql == "" {
		return cond{}, nil, nil
	}
	return cond{sql: "NOT " + inner.group()}, values, nil
}

// convertField resolves one field's value: an operator object, a bare
// array (shorthand for $in), a pattern literal (shorthand for a LIKE
// match), or a scalar equality.
func (c *Converter) convertField(field string, value any) (cond, []any, error) {
	if err := c.checkField(field); err != nil {
		return cond{}, nil, err
	}

	switch v := value.(type) {
	case map[string]any, []docEntry:
		entries, _ := asDocEntries(v)
		return c.convertOperatorObject(field, entries)
	case []any:
		return c.emitOperator(field, "$in", opIn, v)
	case string:
		if isPatternLiteral(v) {
			return cond{sql: field + " LIKE ?"}, []any{compilePattern(v)}, nil
		}
		return cond{sql: field + " = ?"}, []any{v}, nil
	case regexValue:
		return emitRegex(field, v)
	case nil:
		return cond{sql: field + " IS NULL"}, nil, nil
	default:
		return cond{sql: field + " = ?"}, []any{v}, nil
	}
}

func (c *Converter) convertOperatorObject(field string, entries []docEntry) (cond, []any, error) {
	if len(entries) == 0 {
		return cond{}, nil, InvalidFilterError{Field: field, Reason: "empty operator object"}
	}
	if !strings.HasPrefix(entries[0].key, "$") {
		return cond{}, nil, InvalidFilterError{Field: field, Reason: "object value must use $-prefixed operator keys"}
	}

	var conditions []cond
	var values []any
	for _, entry := range entries {
		op, err := mapOperator(entry.key)
		if err != nil {
			return cond{}, nil, err
		}
		result, vs, err := c.emitOperator(field, entry.key, op, entry.value)
		if err != nil {
			return cond{}, nil, err
		}
		conditions = append(conditions, result)
		values = append(values, vs...)
	}

	if len(conditions) == 1 {
		return conditions[0], values, nil
	}
	parts := make([]string, len(conditions))
	for i, condition := range conditions {
		parts[i] = condition.sql
	}
	return cond{sql: "(" + strings.Join(parts, " AND ") + ")", grouped: true}, values, nil
}

// emitOperator turns one field/operator/operand triple into SQL text. The
// switch covers the whole operator enumeration; operand shape errors are
// the only failure mode.
func (c *Converter) emitOperator(field, key string, op operator, value any) (cond, []any, error) {
	switch op {
	case opEq:
		if value == nil {
			return cond{sql: field + " IS NULL"}, nil, nil
		}
		return emitComparison(field, key, op, value)

	case opNe:
		if value == nil {
			return cond{sql: field + " IS NOT NULL"}, nil, nil
		}
		return emitComparison(field, key, op, value)

	case opGt, opGte, opLt, opLte:
		return emitComparison(field, key, op, value)

	case opLike, opNotLike, opILike, opNotILike, opRegexp, opNotRegexp:
		s, ok := value.(string)
		if !ok {
			return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "a string"}
		}
		return cond{sql: field + " " + comparisonSQL[op] + " ?"}, []any{s}, nil

	case opIn, opNin:
		list, ok := value.([]any)
		if !ok || !isScalarSlice(list) {
			return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "an array of scalars"}
		}
		if len(list) == 0 {
			// Nothing is a member of the empty set; IN () is not valid SQL.
			if op == opNin {
				return cond{sql: "TRUE"}, nil, nil
			}
			return cond{sql: "FALSE"}, nil, nil
		}
		placeholders := make([]string, len(list))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		text := " IN ("
		if op == opNin {
			text = " NOT IN ("
		}
		return cond{sql: field + text + strings.Join(placeholders, ", ") + ")"}, list, nil

	case opBetween, opNotBetween:
		bounds, ok := value.([]any)
		if !ok || len(bounds) != 2 || !isScalar(bounds[0]) || !isScalar(bounds[1]) {
			return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "an array of exactly two scalars"}
		}
		text := " BETWEEN ? AND ?"
		if op == opNotBetween {
			text = " NOT BETWEEN ? AND ?"
		}
		return cond{sql: field + text}, bounds, nil

	case opIs:
		switch v := value.(type) {
		case nil:
			return cond{sql: field + " IS NULL"}, nil, nil
		case bool:
			if v {
				return cond{sql: field + " IS TRUE"}, nil, nil
			}
			return cond{sql: field + " IS FALSE"}, nil, nil
		}
		return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "null or a boolean"}

	case opNot:
		inner, values, err := c.convertField(field, value)
		if err != nil {
			return cond{}, nil, err
		}
		return cond{sql: "NOT " + inner.group()}, values, nil

	case opRegex:
		switch v := value.(type) {
		case string:
			return cond{sql: field + " LIKE ?"}, []any{compilePattern(v)}, nil
		case regexValue:
			return emitRegex(field, v)
		}
		return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "a string or regular expression"}

	case opAnd, opOr, opNor:
		return cond{}, nil, InvalidFilterError{Field: key, Reason: "combinator not allowed inside a field condition"}
	}

	return cond{}, nil, UnsupportedOperatorError{Operator: key}
}

func emitComparison(field, key string, op operator, value any) (cond, []any, error) {
	if !isScalar(value) {
		return cond{}, nil, InvalidOperandError{Operator: key, Value: value, Want: "a scalar"}
	}
	return cond{sql: field + " " + comparisonSQL[op] + " ?"}, []any{value}, nil
}

func emitRegex(field string, v regexValue) (cond, []any, error) {
	match := " LIKE ?"
	if v.insensitive {
		match = " ILIKE ?"
	}
	return cond{sql: field + match}, []any{compilePattern(v.pattern)}, nil
}

func (c *Converter) checkField(field string) error {
	if !isValidFieldName(field) {
		return InvalidFieldNameError{Field: field}
	}
	for _, disallowed := range c.disallowedFields {
		if field == disallowed {
			return FieldNotAllowedError{Field: field}
		}
	}
	if len(c.allowedFields) == 0 {
		return nil
	}
	for _, allowed := range c.allowedFields {
		if field == allowed {
			return nil
		}
	}
	return FieldNotAllowedError{Field: field}
}
