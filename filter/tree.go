package filter

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TokenTable maps the engine's canonical operator names to the tokens a
// relational mapping layer understands. T is typically a string or a
// small opaque type exported by the ORM for exactly this purpose.
//
// A zero-valued token marks the operator as unsupported by the target
// layer: filters that need it fail with UnsupportedOperatorError. Callers
// using integer tokens should start numbering at 1.
type TokenTable[T comparable] struct {
	Eq    T
	Ne    T
	Gt    T
	Gte   T
	Lt    T
	Lte   T
	In    T
	NotIn T
	Like  T
	Not   T
	And   T
	Or    T

	// Tokens for the extended operator set, all optional.
	NotLike    T
	ILike      T
	NotILike   T
	Regexp     T
	NotRegexp  T
	Between    T
	NotBetween T
	Is         T
}

// TreeConverter translates MongoDB-style filter documents into nested
// operator trees for an ORM-style query builder: the same traversal as
// Converter, but leaves become {token: operand} mappings instead of SQL
// text and no parameter list is extracted. Field keys in the result are
// strings, operator keys are T values.
//
// Like Converter it holds no per-call state and is safe for concurrent
// use.
type TreeConverter[T comparable] struct {
	conv   Converter
	tokens TokenTable[T]
}

// NewTreeConverter creates a TreeConverter using the given token table.
// It shares Converter's options; WithEmptyCondition does not apply to
// trees (an empty filter is an empty tree).
func NewTreeConverter[T comparable](tokens TokenTable[T], options ...Option) *TreeConverter[T] {
	converter := &Converter{}
	for _, option := range options {
		if option.f != nil {
			option.f(converter)
		}
	}
	return &TreeConverter[T]{conv: *converter, tokens: tokens}
}

// Convert converts a MongoDB filter query into an operator tree.
func (c *TreeConverter[T]) Convert(query []byte) (map[any]any, error) {
	if len(bytes.TrimSpace(query)) == 0 {
		return map[any]any{}, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(query, &doc); err != nil {
		return nil, err
	}
	return c.ConvertMap(doc)
}

// ConvertMap is Convert for an already-decoded filter document.
func (c *TreeConverter[T]) ConvertMap(doc map[string]any) (map[any]any, error) {
	return c.convertDocument(sortedEntries(doc))
}

func (c *TreeConverter[T]) convertDocument(entries []docEntry) (map[any]any, error) {
	node := map[any]any{}
	for _, entry := range entries {
		if strings.HasPrefix(entry.key, "$") {
			op, err := mapOperator(entry.key)
			if err != nil {
				return nil, err
			}
			switch {
			case op.isCombinator():
				err = c.addCombinator(node, entry.key, op, entry.value)
			case op == opNot:
				err = c.addNotDocument(node, entry.key, entry.value)
			default:
				err = InvalidFilterError{Field: entry.key, Reason: "operator not allowed at document level"}
			}
			if err != nil {
				return nil, err
			}
			continue
		}

		fieldNode, err := c.convertField(entry.key, entry.value)
		if err != nil {
			return nil, err
		}
		node[entry.key] = fieldNode
	}
	return node, nil
}

// addCombinator keeps the sub-filter list under the combinator's token.
// Unlike the SQL form a single survivor stays wrapped: merging its keys
// into the parent could silently collide with a sibling field.
func (c *TreeConverter[T]) addCombinator(node map[any]any, key string, op operator, value any) error {
	docs, ok := asDocList(value)
	if !ok {
		return InvalidOperandError{Operator: key, Value: value, Want: "an array of documents"}
	}

	var subs []any
	for _, doc := range docs {
		sub, err := c.convertDocument(doc)
		if err != nil {
			return err
		}
		if len(sub) == 0 {
			continue
		}
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil
	}

	if op == opNor {
		orToken, err := c.token(key, opOr)
		if err != nil {
			return err
		}
		return c.setNot(node, key, map[any]any{orToken: subs})
	}

	tok, err := c.token(key, op)
	if err != nil {
		return err
	}
	node[tok] = subs
	return nil
}

func (c *TreeConverter[T]) addNotDocument(node map[any]any, key string, value any) error {
	entries, ok := asDocEntries(value)
	if !ok {
		return InvalidOperandError{Operator: key, Value: value, Want: "a document"}
	}

	sub, err := c.convertDocument(entries)
	if err != nil {
		return err
	}
	if len(sub) == 0 {
		return nil
	}
	return c.setNot(node, key, sub)
}

// setNot guards the Not slot: $not and $nor both land on it, and a second
// write would silently drop the first.
func (c *TreeConverter[T]) setNot(node map[any]any, key string, value any) error {
	tok, err := c.token(key, opNot)
	if err != nil {
		return err
	}
	if _, exists := node[tok]; exists {
		return InvalidFilterError{Field: key, Reason: "conflicting negations at the same level"}
	}
	node[tok] = value
	return nil
}

func (c *TreeConverter[T]) convertField(field string, value any) (any, error) {
	if err := c.conv.checkField(field); err != nil {
		return nil, err
	}
	return c.fieldNode(field, value)
}

func (c *TreeConverter[T]) fieldNode(field string, value any) (any, error) {
	switch v := value.(type) {
	case map[string]any, []docEntry:
		entries, _ := asDocEntries(v)
		return c.operatorNode(field, entries)
	case []any:
		tok, err := c.token("$in", opIn)
		if err != nil {
			return nil, err
		}
		return map[any]any{tok: v}, nil
	case string:
		if isPatternLiteral(v) {
			tok, err := c.token("$regex", opLike)
			if err != nil {
				return nil, err
			}
			return map[any]any{tok: compilePattern(v)}, nil
		}
		return c.eqNode(v)
	case regexValue:
		tok, err := c.regexToken(v)
		if err != nil {
			return nil, err
		}
		return map[any]any{tok: compilePattern(v.pattern)}, nil
	default:
		return c.eqNode(v)
	}
}

func (c *TreeConverter[T]) eqNode(value any) (any, error) {
	tok, err := c.token("$eq", opEq)
	if err != nil {
		return nil, err
	}
	return map[any]any{tok: value}, nil
}

func (c *TreeConverter[T]) operatorNode(field string, entries []docEntry) (any, error) {
	if len(entries) == 0 {
		return nil, InvalidFilterError{Field: field, Reason: "empty operator object"}
	}
	if !strings.HasPrefix(entries[0].key, "$") {
		return nil, InvalidFilterError{Field: field, Reason: "object value must use $-prefixed operator keys"}
	}

	node := map[any]any{}
	for _, entry := range entries {
		op, err := mapOperator(entry.key)
		if err != nil {
			return nil, err
		}
		if err := c.addOperand(node, field, entry.key, op, entry.value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// addOperand mirrors Converter.emitOperator for the tree form: same shape
// checks, but operands pass through whole (no per-element placeholder
// expansion and no empty-array rewriting, the ORM owns those choices).
func (c *TreeConverter[T]) addOperand(node map[any]any, field, key string, op operator, value any) error {
	switch op {
	case opEq, opNe, opGt, opGte, opLt, opLte:
		if value != nil && !isScalar(value) {
			return InvalidOperandError{Operator: key, Value: value, Want: "a scalar"}
		}
		return c.set(node, key, op, value)

	case opLike, opNotLike, opILike, opNotILike, opRegexp, opNotRegexp:
		s, ok := value.(string)
		if !ok {
			return InvalidOperandError{Operator: key, Value: value, Want: "a string"}
		}
		return c.set(node, key, op, s)

	case opIn, opNin:
		list, ok := value.([]any)
		if !ok || !isScalarSlice(list) {
			return InvalidOperandError{Operator: key, Value: value, Want: "an array of scalars"}
		}
		return c.set(node, key, op, list)

	case opBetween, opNotBetween:
		bounds, ok := value.([]any)
		if !ok || len(bounds) != 2 || !isScalar(bounds[0]) || !isScalar(bounds[1]) {
			return InvalidOperandError{Operator: key, Value: value, Want: "an array of exactly two scalars"}
		}
		return c.set(node, key, op, bounds)

	case opIs:
		switch value.(type) {
		case nil, bool:
			return c.set(node, key, op, value)
		}
		return InvalidOperandError{Operator: key, Value: value, Want: "null or a boolean"}

	case opNot:
		inner, err := c.fieldNode(field, value)
		if err != nil {
			return err
		}
		return c.set(node, key, opNot, inner)

	case opRegex:
		switch v := value.(type) {
		case string:
			return c.set(node, key, opLike, compilePattern(v))
		case regexValue:
			tok, err := c.regexToken(v)
			if err != nil {
				return err
			}
			node[tok] = compilePattern(v.pattern)
			return nil
		}
		return InvalidOperandError{Operator: key, Value: value, Want: "a string or regular expression"}

	case opAnd, opOr, opNor:
		return InvalidFilterError{Field: key, Reason: "combinator not allowed inside a field condition"}
	}

	return UnsupportedOperatorError{Operator: key}
}

func (c *TreeConverter[T]) set(node map[any]any, key string, op operator, value any) error {
	tok, err := c.token(key, op)
	if err != nil {
		return err
	}
	node[tok] = value
	return nil
}

func (c *TreeConverter[T]) regexToken(v regexValue) (T, error) {
	if v.insensitive {
		return c.token("$iLike", opILike)
	}
	return c.token("$regex", opLike)
}

// token resolves a canonical operator to the caller's table entry; key is
// only used for error reporting.
func (c *TreeConverter[T]) token(key string, op operator) (T, error) {
	var tok T
	switch op {
	case opEq:
		tok = c.tokens.Eq
	case opNe:
		tok = c.tokens.Ne
	case opGt:
		tok = c.tokens.Gt
	case opGte:
		tok = c.tokens.Gte
	case opLt:
		tok = c.tokens.Lt
	case opLte:
		tok = c.tokens.Lte
	case opIn:
		tok = c.tokens.In
	case opNin:
		tok = c.tokens.NotIn
	case opLike, opRegex:
		tok = c.tokens.Like
	case opNotLike:
		tok = c.tokens.NotLike
	case opILike:
		tok = c.tokens.ILike
	case opNotILike:
		tok = c.tokens.NotILike
	case opRegexp:
		tok = c.tokens.Regexp
	case opNotRegexp:
		tok = c.tokens.NotRegexp
	case opBetween:
		tok = c.tokens.Between
	case opNotBetween:
		tok = c.tokens.NotBetween
	case opIs:
		tok = c.tokens.Is
	case opNot:
		tok = c.tokens.Not
	case opAnd:
		tok = c.tokens.And
	case opOr:
		tok = c.tokens.Or
	}

	var zero T
	if tok == zero {
		return zero, UnsupportedOperatorError{Operator: key}
	}
	return tok, nil
}
