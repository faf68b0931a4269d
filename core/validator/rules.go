package validator

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Rule is a deferred check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs rules and returns ValidationErrors for the failed ones, or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.Check() {
			errs.Add(r.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// E.164 allows up to 15 digits; shorter local numbers are accepted from 7.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Required checks that a string is not blank.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenString checks that value has at least min runes.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxLenString checks that value has at most max runes.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// ValidPhone checks for an already-normalized phone number: an optional
// leading "+" followed by 7 to 15 digits.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool { return phoneRegex.MatchString(value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid phone number",
			TranslationKey:    "validation.phone",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidDigits checks that value consists of exactly n digits. n <= 0 accepts any length.
func ValidDigits(field, value string, n int) Rule {
	return Rule{
		Check: func() bool {
			if value == "" || (n > 0 && len(value) != n) {
				return false
			}
			for _, r := range value {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must contain only digits",
			TranslationKey:    "validation.digits",
			TranslationValues: map[string]any{"field": field, "len": n},
		},
	}
}

// InRange checks min <= value <= max.
func InRange(field string, value, min, max float64) Rule {
	return Rule{
		Check: func() bool { return !math.IsNaN(value) && value >= min && value <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be between %v and %v", min, max),
			TranslationKey:    "validation.between",
			TranslationValues: map[string]any{"field": field, "min": min, "max": max},
		},
	}
}

// Min checks value >= min.
func Min(field string, value, min float64) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %v", min),
			TranslationKey:    "validation.min",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// Max checks value <= max.
func Max(field string, value, max float64) Rule {
	return Rule{
		Check: func() bool { return value <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %v", max),
			TranslationKey:    "validation.max",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// Positive checks value > 0.
func Positive(field string, value float64) Rule {
	return Rule{
		Check: func() bool { return value > 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "must be positive",
			TranslationKey:    "validation.positive",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// Latitude checks a latitude in degrees.
func Latitude(field string, value float64) Rule {
	return InRange(field, value, -90, 90)
}

// Longitude checks a longitude in degrees.
func Longitude(field string, value float64) Rule {
	return InRange(field, value, -180, 180)
}

// OneOf checks that value is one of allowed.
func OneOf(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be one of: " + strings.Join(allowed, ", "),
			TranslationKey:    "validation.in",
			TranslationValues: map[string]any{"field": field, "values": allowed},
		},
	}
}

// PastDate checks that value is set and before now.
func PastDate(field string, value, now time.Time) Rule {
	return Rule{
		Check: func() bool { return !value.IsZero() && value.Before(now) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be a date in the past",
			TranslationKey:    "validation.past",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
