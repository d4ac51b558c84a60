package filter

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// regexValue is the normalized form of a BSON regular expression. Only
// the i flag changes the output (ILIKE instead of LIKE); other flags have
// no LIKE equivalent and are ignored.
type regexValue struct {
	pattern     string
	insensitive bool
}

// ConvertBSON is Convert for a bson.D document, as produced by the
// official MongoDB driver. Unlike map input the document's own key order
// is kept, so the caller controls condition order.
func (c *Converter) ConvertBSON(doc bson.D) (string, []any, error) {
	result, values, err := c.convertDocument(bsonEntries(doc), false)
	if err != nil {
		return "", nil, err
	}
	if result.sql == "" {
		return c.emptyCondition, nil, nil
	}
	return result.sql, values, nil
}

// ConvertBSON is Convert for a bson.D document; key order is kept.
func (c *TreeConverter[T]) ConvertBSON(doc bson.D) (map[any]any, error) {
	return c.convertDocument(bsonEntries(doc))
}

func bsonEntries(doc bson.D) []docEntry {
	entries := make([]docEntry, 0, len(doc))
	for _, e := range doc {
		entries = append(entries, docEntry{key: e.Key, value: normalizeBSON(e.Value)})
	}
	return entries
}

// normalizeBSON rewrites driver types into the shapes the walker
// understands. Values it does not recognize pass through untouched and
// end up as parameters for the SQL driver to bind.
func normalizeBSON(v any) any {
	switch v := v.(type) {
	case bson.D:
		return bsonEntries(v)
	case bson.M:
		return normalizeBSONMap(v)
	case map[string]any:
		return normalizeBSONMap(v)
	case primitive.A:
		return normalizeBSONSlice(v)
	case []any:
		return normalizeBSONSlice(v)
	case primitive.Regex:
		return regexValue{pattern: v.Pattern, insensitive: strings.Contains(v.Options, "i")}
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time()
	case primitive.Null:
		return nil
	default:
		return v
	}
}

func normalizeBSONMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeBSON(v)
	}
	return out
}

func normalizeBSONSlice(list []any) []any {
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = normalizeBSON(v)
	}
	return out
}
