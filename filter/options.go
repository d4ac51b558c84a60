package filter

type Option struct {
	f func(*Converter)
}

// WithAllowedFields is an option to allow only the specified fields in
// filter and sort documents. The default is to allow every field that
// passes the lexical field name check.
func WithAllowedFields(fields ...string) Option {
	return Option{
		f: func(c *Converter) {
			c.allowedFields = append(c.allowedFields, fields...)
		},
	}
}

// WithDisallowedFields is an option to reject the specified fields in
// filter and sort documents. Disallowing wins over allowing when a field
// appears in both lists.
func WithDisallowedFields(fields ...string) Option {
	return Option{
		f: func(c *Converter) {
			c.disallowedFields = append(c.disallowedFields, fields...)
		},
	}
}

// WithEmptyCondition is an option to specify the condition to be used when
// the input query filter is empty. (e.g. you have a query with no
// conditions)
//
// The default is an empty string, which keeps the result directly
// embeddable after an existing predicate; pass "TRUE" or "FALSE" when the
// clause always stands alone after WHERE.
func WithEmptyCondition(condition string) Option {
	return Option{
		f: func(c *Converter) {
			c.emptyCondition = condition
		},
	}
}
