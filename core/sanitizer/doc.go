// Package sanitizer cleans user-supplied strings before they are sent to the API.
//
// Struct fields are sanitized in place according to `sanitize` tags. Sanitizers
// are applied left to right and nested structs are walked automatically:
//
//	type Signup struct {
//		PhoneNumber string `sanitize:"phone"`
//		DisplayName string `sanitize:"single_line,strip_html,max:50"`
//		Bio         string `sanitize:"user_input,max:500"`
//		Skip        string `sanitize:"-"`
//	}
//
//	if err := sanitizer.SanitizeStruct(&in); err != nil {
//		return err
//	}
//
// Built-in sanitizers: trim, trim_lower, single_line, no_spaces, no_control,
// strip_html, digits, phone, user_input and max:N. Register more with
// RegisterSanitizer.
//
// The string helpers (NormalizePhone, SingleLine, StripHTML and friends) can
// also be called directly.
package sanitizer
