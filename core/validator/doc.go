// Package validator checks request payloads before they leave the client.
//
// Validation is driven by `validate` struct tags or by composing Rules
// directly. Every failed rule is collected into ValidationErrors, so a caller
// can report all problems at once.
//
// # Struct tags
//
// Rules are separated by semicolons; parameters follow a colon and are
// separated by commas:
//
//	type LoginCredentials struct {
//		PhoneNumber      string `json:"phoneNumber" validate:"required;phone"`
//		VerificationCode string `json:"verificationCode" validate:"required;digits:6"`
//	}
//
//	if err := validator.ValidateStruct(&creds); err != nil {
//		errs := validator.ExtractValidationErrors(err)
//		if errs.Has("phoneNumber") { ... }
//	}
//
// Field names in errors use the JSON name when one is declared. Nested structs
// are validated recursively; nil pointers are only checked by "required".
//
// Built-in rules: required, min:N, max:N (string runes, slice length or
// numeric value), between:MIN,MAX, phone, digits[:N], in:A,B,C, positive,
// latitude, longitude and past (time.Time before now). Add more with
// RegisterValidator.
//
// # Programmatic rules
//
//	err := validator.Apply(
//		validator.Latitude("latitude", q.Latitude),
//		validator.Longitude("longitude", q.Longitude),
//		validator.Positive("radius", q.Radius),
//	)
//
// ValidationError carries a TranslationKey and TranslationValues for
// applications that localize messages.
package validator
