package filterql

// Operator is one of the 14 standard filter operator kinds, or CUSTOM for an
// operator resolved through the custom-operator registry (spec §3).
type Operator string

// Standard operator kinds.
const (
	EQ         Operator = "EQ"
	NE         Operator = "NE"
	GT         Operator = "GT"
	GTE        Operator = "GTE"
	LT         Operator = "LT"
	LTE        Operator = "LTE"
	MATCHES    Operator = "MATCHES"
	NotMatches Operator = "NOT_MATCHES"
	IN         Operator = "IN"
	NotIn      Operator = "NOT_IN"
	IsNull     Operator = "IS_NULL"
	NotNull    Operator = "NOT_NULL"
	RANGE      Operator = "RANGE"
	NotRange   Operator = "NOT_RANGE"
	CUSTOM     Operator = "CUSTOM"
)

// Arity describes how many values an operator's invocation expects.
type Arity int

const (
	// ArityNone means the operator takes no value (e.g. IS_NULL).
	ArityNone Arity = iota
	// ArityScalar means the operator takes exactly one value.
	ArityScalar
	// ArityCollection means the operator takes a variable-length list.
	ArityCollection
	// ArityRange means the operator takes exactly two values (low, high).
	ArityRange
)

// OperatorInfo describes the static properties of an Operator kind: whether
// it requires a value, whether it accepts multiple values, and its expected
// arity (spec §3).
type OperatorInfo struct {
	RequiresValue          bool
	SupportsMultipleValues bool
	Arity                  Arity
}

var operatorInfo = map[Operator]OperatorInfo{
	EQ:         {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	NE:         {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	GT:         {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	GTE:        {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	LT:         {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	LTE:        {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	MATCHES:    {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	NotMatches: {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityScalar},
	IN:         {RequiresValue: true, SupportsMultipleValues: true, Arity: ArityCollection},
	NotIn:      {RequiresValue: true, SupportsMultipleValues: true, Arity: ArityCollection},
	IsNull:     {RequiresValue: false, SupportsMultipleValues: false, Arity: ArityNone},
	NotNull:    {RequiresValue: false, SupportsMultipleValues: false, Arity: ArityNone},
	RANGE:      {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityRange},
	NotRange:   {RequiresValue: true, SupportsMultipleValues: false, Arity: ArityRange},
	// CUSTOM's value requirements are opaque to the core; the registered
	// custom-operator provider decides. Default to permissive scalar-or-none.
	CUSTOM: {RequiresValue: false, SupportsMultipleValues: true, Arity: ArityScalar},
}

// Info returns the static properties of the operator. The zero OperatorInfo
// is returned for an unrecognized Operator value.
func (op Operator) Info() OperatorInfo {
	return operatorInfo[op]
}

// RequiresValue reports whether the operator requires an accompanying
// filter value.
func (op Operator) RequiresValue() bool { return op.Info().RequiresValue }

// SupportsMultipleValues reports whether the operator accepts a collection
// of values rather than a single scalar.
func (op Operator) SupportsMultipleValues() bool { return op.Info().SupportsMultipleValues }

// Arity returns the operator's expected value arity.
func (op Operator) Arity() Arity { return op.Info().Arity }

// IsStandard reports whether op is one of the 14 built-in kinds (i.e. not
// CUSTOM).
func (op Operator) IsStandard() bool {
	_, ok := operatorInfo[op]
	return ok && op != CUSTOM
}

// String returns the operator's canonical code.
func (op Operator) String() string { return string(op) }
