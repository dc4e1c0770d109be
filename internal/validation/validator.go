// =============================================================================
// CSV Gratuity Report - Gratuity Validation
// =============================================================================
//
// This module validates the gratuity percentage entered by the operator.
//
// ACCEPTED INPUT:
//   - A decimal number, optionally followed by "%" ("20", "12.5", "15 %")
//   - Surrounding whitespace is ignored
//   - The value must be finite and 0 or higher; there is no upper bound
//
// Every rejection carries the same operator-facing message so the prompt can
// simply show it and ask again.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// GratuityMessage is shown to the operator for any invalid gratuity input.
const GratuityMessage = "Please enter a valid gratuity percentage (0 or higher)."

// Rules reported in ValidationError.Rule.
const (
	RuleNumeric     = "numeric"
	RuleNonNegative = "non_negative"
	RuleFinite      = "finite"
)

// numberPattern restricts input to plain decimal notation, so hex floats,
// "NaN", "Inf" and digit separators are rejected before strconv sees them.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError describes rejected gratuity input.
type ValidationError struct {
	// Value is the input as entered.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is the operator-facing message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid gratuity percentage '%s' (rule: %s)", e.Value, e.Rule)
}

func newValidationError(value, rule string) *ValidationError {
	return &ValidationError{Value: value, Rule: rule, Message: GratuityMessage}
}

// =============================================================================
// VALIDATORS
// =============================================================================

// ParseGratuity converts operator input into a gratuity percentage.
//
// PARAMETERS:
//   - text: The raw input.
//
// RETURNS:
//   - The percentage (20 means 20%).
//   - A *ValidationError if the input is not a number or is negative.
func ParseGratuity(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))

	if !numberPattern.MatchString(trimmed) {
		return 0, newValidationError(text, RuleNumeric)
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, newValidationError(text, RuleFinite)
	}

	if err := checkGratuity(value, text); err != nil {
		return 0, err
	}

	// "-0" parses to negative zero; the label must not read "-0% Gratuity".
	if value == 0 {
		value = 0
	}
	return value, nil
}

// CheckGratuity validates a percentage supplied as a number.
func CheckGratuity(value float64) error {
	return checkGratuity(value, strconv.FormatFloat(value, 'g', -1, 64))
}

func checkGratuity(value float64, text string) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return newValidationError(text, RuleFinite)
	}
	if value < 0 {
		return newValidationError(text, RuleNonNegative)
	}
	return nil
}
