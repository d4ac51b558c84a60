// Package filter converts MongoDB query filters into SQL WHERE conditions
// with positional parameters, or into operator trees for an ORM-style
// query builder.
//
// The SQL form stays dialect-neutral: ? placeholders (DollarPlaceholders
// renumbers them for $N databases) and no identifier quoting, with field
// names restricted to identifier shape instead. The tree form never names
// operators itself; the caller supplies its ORM's tokens in a TokenTable.
//
// See: https://www.mongodb.com/docs/compass/current/query/filter
package filter
