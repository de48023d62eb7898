package filterql

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Each structured error type below implements Is so
// that errors.Is(err, ErrXxx) succeeds regardless of the structured fields
// carried alongside it.
var (
	// ErrDSLSyntax is the sentinel for DSLSyntaxError.
	ErrDSLSyntax = errors.New("filterql: dsl syntax error")
	// ErrFilterDefinition is the sentinel for FilterDefinitionError.
	ErrFilterDefinition = errors.New("filterql: filter definition error")
	// ErrFilterValidation is the sentinel for FilterValidationError.
	ErrFilterValidation = errors.New("filterql: filter validation error")
	// ErrProjectionDefinition is the sentinel for ProjectionDefinitionError.
	ErrProjectionDefinition = errors.New("filterql: projection definition error")
	// ErrPlanConstruction is the sentinel for PlanConstructionError.
	ErrPlanConstruction = errors.New("filterql: plan construction error")
	// ErrComputationResolution is the sentinel for ComputationResolutionError.
	ErrComputationResolution = errors.New("filterql: computation resolution error")
)

// DSLSyntaxError reports a failure to tokenize, parse, or validate a DSL
// expression against a Policy (spec §4.1). Position is -1 when the
// offending token has no single well-defined location.
type DSLSyntaxError struct {
	Reason   string
	Position int
}

// Error returns the error string.
func (e *DSLSyntaxError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("filterql: dsl syntax error at position %d: %s", e.Position, e.Reason)
	}
	return fmt.Sprintf("filterql: dsl syntax error: %s", e.Reason)
}

// Is reports whether target is ErrDSLSyntax.
func (e *DSLSyntaxError) Is(target error) bool { return target == ErrDSLSyntax }

// NewDSLSyntaxError returns a DSLSyntaxError with no known token position.
func NewDSLSyntaxError(reason string) *DSLSyntaxError {
	return &DSLSyntaxError{Reason: reason, Position: -1}
}

// NewDSLSyntaxErrorAt returns a DSLSyntaxError with a known token position.
func NewDSLSyntaxErrorAt(reason string, position int) *DSLSyntaxError {
	return &DSLSyntaxError{Reason: reason, Position: position}
}

// UndefinedFilterError is the specific DSLSyntaxError raised by the postfix
// condition builder (C4) when an identifier in the expression has no
// matching entry in the request's filter map.
type UndefinedFilterError struct {
	Name      string
	Available []string
}

// Error returns the error string.
func (e *UndefinedFilterError) Error() string {
	return fmt.Sprintf("filterql: undefined filter %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Is reports whether target is ErrDSLSyntax: undefined filters are a DSL
// syntax failure per spec §4.4.
func (e *UndefinedFilterError) Is(target error) bool { return target == ErrDSLSyntax }

// BadArityError is the DSLSyntaxError raised when the C4 postfix evaluator's
// operand stack does not contain exactly one element at end of input.
type BadArityError struct {
	StackDepth int
}

// Error returns the error string.
func (e *BadArityError) Error() string {
	return fmt.Sprintf("filterql: bad expression arity: stack depth %d at end of input (expected 1)", e.StackDepth)
}

// Is reports whether target is ErrDSLSyntax.
func (e *BadArityError) Is(target error) bool { return target == ErrDSLSyntax }

// FilterDefinitionError reports a problem resolving a FilterDefinition: an
// operator unsupported by a property reference, or a CUSTOM operator code
// with no registered provider (spec §3, §6).
type FilterDefinitionError struct {
	Property string
	Operator string
	Reason   string
}

// Error returns the error string.
func (e *FilterDefinitionError) Error() string {
	return fmt.Sprintf("filterql: filter definition error on %s %s: %s", e.Property, e.Operator, e.Reason)
}

// Is reports whether target is ErrFilterDefinition.
func (e *FilterDefinitionError) Is(target error) bool { return target == ErrFilterDefinition }

// FilterValidationError reports a semantic error detected at resolve time
// under the STRICT_EXCEPTION null-value policy (spec §7).
type FilterValidationError struct {
	Property string
	Operator string
	Reason   string
}

// Error returns the error string.
func (e *FilterValidationError) Error() string {
	return fmt.Sprintf("filterql: filter validation error on %s %s: %s", e.Property, e.Operator, e.Reason)
}

// Is reports whether target is ErrFilterValidation.
func (e *FilterValidationError) Is(target error) bool { return target == ErrFilterValidation }

// ProjectionDefinitionError reports a metadata lookup miss while resolving
// a requested DTO path (spec §4.6).
type ProjectionDefinitionError struct {
	Path   string
	Reason string
}

// Error returns the error string.
func (e *ProjectionDefinitionError) Error() string {
	return fmt.Sprintf("filterql: projection definition error on %q: %s", e.Path, e.Reason)
}

// Is reports whether target is ErrProjectionDefinition.
func (e *ProjectionDefinitionError) Is(target error) bool { return target == ErrProjectionDefinition }

// PlanConstructionError is fatal to a projection request: a metadata lookup
// miss, an undiscoverable parent-reference field, or any other failure that
// prevents a usable ExecutionPlan from being built (spec §4.6).
type PlanConstructionError struct {
	Stage  string
	Reason string
}

// Error returns the error string.
func (e *PlanConstructionError) Error() string {
	return fmt.Sprintf("filterql: plan construction error during %s: %s", e.Stage, e.Reason)
}

// Is reports whether target is ErrPlanConstruction.
func (e *PlanConstructionError) Is(target error) bool { return target == ErrPlanConstruction }

// ComputationResolutionError reports a computed-field whose computation
// method could not be resolved against any registered provider (spec §4.6).
type ComputationResolutionError struct {
	Field           string
	SearchedMethods []string
}

// Error returns the error string.
func (e *ComputationResolutionError) Error() string {
	return fmt.Sprintf(
		"filterql: could not resolve computation method for field %q (searched: %s)",
		e.Field, strings.Join(e.SearchedMethods, ", "),
	)
}

// Is reports whether target is ErrComputationResolution.
func (e *ComputationResolutionError) Is(target error) bool { return target == ErrComputationResolution }
