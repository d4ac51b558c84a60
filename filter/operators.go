package filter

// operator is the canonical form of a $-prefixed filter key. The set is
// closed: mapOperator rejects anything outside it, and emitOperator
// switches over every member, so adding an operator here without wiring
// its emission is a visible gap instead of a silent no-op.
type operator string

const (
	opEq         operator = "eq"
	opNe         operator = "ne"
	opGt         operator = "gt"
	opGte        operator = "gte"
	opLt         operator = "lt"
	opLte        operator = "lte"
	opIn         operator = "in"
	opNin        operator = "nin"
	opLike       operator = "like"
	opNotLike    operator = "notLike"
	opILike      operator = "iLike"
	opNotILike   operator = "notILike"
	opRegexp     operator = "regexp"
	opNotRegexp  operator = "notRegexp"
	opBetween    operator = "between"
	opNotBetween operator = "notBetween"
	opIs         operator = "is"
	opNot        operator = "not"
	opAnd        operator = "and"
	opOr         operator = "or"
	opNor        operator = "nor"
	opRegex      operator = "regex"
)

var operatorMap = map[string]operator{
	"$eq":         opEq,
	"$ne":         opNe,
	"$gt":         opGt,
	"$gte":        opGte,
	"$lt":         opLt,
	"$lte":        opLte,
	"$in":         opIn,
	"$nin":        opNin,
	"$like":       opLike,
	"$notLike":    opNotLike,
	"$iLike":      opILike,
	"$notILike":   opNotILike,
	"$regexp":     opRegexp,
	"$notRegexp":  opNotRegexp,
	"$between":    opBetween,
	"$notBetween": opNotBetween,
	"$is":         opIs,
	"$not":        opNot,
	"$and":        opAnd,
	"$or":         opOr,
	"$nor":        opNor,
	"$regex":      opRegex,
}

func mapOperator(key string) (operator, error) {
	op, ok := operatorMap[key]
	if !ok {
		return "", UnsupportedOperatorError{Operator: key}
	}
	return op, nil
}

func (op operator) isCombinator() bool {
	return op == opAnd || op == opOr || op == opNor
}

// comparisonSQL holds the binary comparison text for the operators that
// translate to `field <op> ?` with a single parameter.
var comparisonSQL = map[operator]string{
	opEq:        "=",
	opNe:        "<>",
	opGt:        ">",
	opGte:       ">=",
	opLt:        "<",
	opLte:       "<=",
	opLike:      "LIKE",
	opNotLike:   "NOT LIKE",
	opILike:     "ILIKE",
	opNotILike:  "NOT ILIKE",
	opRegexp:    "~",
	opNotRegexp: "!~",
}
