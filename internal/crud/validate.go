// Package crud is a thin orchestrator over the SQL builder and an
// executor, shaping JSON rows and performing include expansion.
package crud

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"architect/internal/apperr"
	"architect/internal/model"
)

// ValidateBody checks body against rules, enforcing required fields.
// Used for create. It stops at the first failing rule it meets and returns
// that one field error; fields not yet checked at that point are not
// reported, and the order fields are checked in is not defined.
func ValidateBody(body map[string]any, rules map[string]model.ValidationRule) error {
	for col, rule := range rules {
		v, present := body[col]
		if rule.Required && (!present || v == nil) {
			return apperr.Validation(fmt.Sprintf("%s is required", col),
				apperr.FieldError{Field: col, Rule: "required", Message: col + " is required"})
		}
		if present {
			if err := validateField(col, v, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidatePartial checks only the fields present in body, never enforcing
// required. Used for update, where omission means "leave unchanged".
func ValidatePartial(body map[string]any, rules map[string]model.ValidationRule) error {
	for col, v := range body {
		rule, ok := rules[col]
		if !ok {
			continue
		}
		if err := validateField(col, v, rule); err != nil {
			return err
		}
	}
	return nil
}

func validateField(col string, v any, rule model.ValidationRule) error {
	if v == nil {
		return nil
	}

	if rule.Format != "" {
		if err := validateFormat(col, v, rule.Format); err != nil {
			return err
		}
	}

	if s, ok := v.(string); ok {
		if rule.MaxLength != nil && len(s) > *rule.MaxLength {
			return fieldErr(col, "max_length", fmt.Sprintf("%s must be at most %d characters", col, *rule.MaxLength))
		}
		if rule.MinLength != nil && len(s) < *rule.MinLength {
			return fieldErr(col, "min_length", fmt.Sprintf("%s must be at least %d characters", col, *rule.MinLength))
		}
		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fieldErr(col, "pattern", fmt.Sprintf("invalid pattern for %s", col))
			}
			if !re.MatchString(s) {
				return fieldErr(col, "pattern", fmt.Sprintf("%s does not match required pattern", col))
			}
		}
	}

	if len(rule.Allowed) > 0 {
		ok := false
		for _, a := range rule.Allowed {
			if valueEqual(v, a) {
				ok = true
				break
			}
		}
		if !ok {
			return fieldErr(col, "allowed", fmt.Sprintf("%s must be one of the allowed values", col))
		}
	}

	if n, ok := numeric(v); ok {
		if rule.Minimum != nil && n < *rule.Minimum {
			return fieldErr(col, "minimum", fmt.Sprintf("%s must be at least %v", col, *rule.Minimum))
		}
		if rule.Maximum != nil && n > *rule.Maximum {
			return fieldErr(col, "maximum", fmt.Sprintf("%s must be at most %v", col, *rule.Maximum))
		}
	}

	return nil
}

func validateFormat(col string, v any, format string) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch strings.ToLower(format) {
	case "email":
		if !strings.Contains(s, "@") || len(s) < 3 {
			return fieldErr(col, "format", fmt.Sprintf("%s must be a valid email", col))
		}
	case "uuid":
		if _, err := uuid.Parse(s); err != nil {
			return fieldErr(col, "format", fmt.Sprintf("%s must be a valid UUID", col))
		}
	case "date-time":
		if !isRFC3339ish(s) {
			return fieldErr(col, "format", fmt.Sprintf("%s must be a valid date-time", col))
		}
	}
	return nil
}

var dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)

func isRFC3339ish(s string) bool {
	return dateTimePattern.MatchString(s)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func valueEqual(a, b any) bool {
	if fa, ok := numeric(a); ok {
		if fb, ok := numeric(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func fieldErr(field, rule, message string) error {
	return apperr.Validation(message, apperr.FieldError{Field: field, Rule: rule, Message: message})
}
