package validator

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ValidatorFunc is a function that validates a value and returns a Rule
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required":  requiredValidator,
		"min":       minValidator,
		"max":       maxValidator,
		"between":   betweenValidator,
		"phone":     phoneValidator,
		"digits":    digitsValidator,
		"in":        inValidator,
		"positive":  positiveValidator,
		"latitude":  latitudeValidator,
		"longitude": longitudeValidator,
		"past":      pastValidator,
	}
)

// RegisterValidator adds a custom validator function to the registry
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates a struct based on its `validate` tags.
// Rules are separated by ";" and parameters by ",": `validate:"required;min:3"`.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	var errs ValidationErrors
	validateStructRecursive(rv, "", &errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func validateStructRecursive(rv reflect.Value, prefix string, errs *ValidationErrors) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		structField := rt.Field(i)
		tag := structField.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		fieldPath := fieldName(structField)
		if prefix != "" {
			fieldPath = prefix + "." + fieldPath
		}

		// time.Time is validated as a value, not walked.
		isTime := field.Type() == reflect.TypeOf(time.Time{})

		if field.Kind() == reflect.Struct && tag == "" && !isTime {
			validateStructRecursive(field, fieldPath, errs)
			continue
		}

		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if tag != "" {
					validateField(fieldPath, field, tag, errs)
				}
				continue
			}
			elem := field.Elem()
			switch {
			case tag != "":
				validateField(fieldPath, elem, tag, errs)
			case elem.Kind() == reflect.Struct && elem.Type() != reflect.TypeOf(time.Time{}):
				validateStructRecursive(elem, fieldPath, errs)
			}
			continue
		}

		if tag == "" {
			continue
		}

		validateField(fieldPath, field, tag, errs)
	}
}

// fieldName prefers the JSON name so errors match the wire payload.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}

func validateField(fieldPath string, field reflect.Value, tag string, errs *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, ruleStr := range strings.Split(tag, ";") {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(ruleStr, ":")
		name = strings.TrimSpace(name)

		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		fn, ok := registry[name]
		if !ok {
			continue
		}
		// Nil pointers only answer to "required".
		if field.Kind() == reflect.Pointer && field.IsNil() && name != "required" {
			continue
		}
		if rule := fn(fieldPath, field, params); !rule.Check() {
			errs.Add(rule.Error)
		}
	}
}

func pass() Rule {
	return Rule{Check: func() bool { return true }}
}

func numeric(value reflect.Value) (float64, bool) {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(value.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(value.Uint()), true
	case reflect.Float32, reflect.Float64:
		return value.Float(), true
	default:
		return 0, false
	}
}

// Built-in validators

func requiredValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() == reflect.String {
		return Required(field, value.String())
	}
	return Rule{
		Check: func() bool {
			switch value.Kind() {
			case reflect.Slice, reflect.Map, reflect.Array:
				return value.Len() > 0
			case reflect.Pointer, reflect.Interface:
				return !value.IsNil()
			default:
				return !value.IsZero()
			}
		},
		Error: Required(field, "").Error,
	}
}

func minValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}

	if value.Kind() == reflect.String {
		min, _ := strconv.Atoi(params[0])
		return MinLenString(field, value.String(), min)
	}
	if value.Kind() == reflect.Slice {
		min, _ := strconv.Atoi(params[0])
		r := MinLenString(field, "", min)
		r.Check = func() bool { return value.Len() >= min }
		r.Error.Message = "must have at least " + params[0] + " items"
		r.Error.TranslationKey = "validation.min_items"
		return r
	}
	if n, ok := numeric(value); ok {
		min, _ := strconv.ParseFloat(params[0], 64)
		return Min(field, n, min)
	}
	return pass()
}

func maxValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}

	if value.Kind() == reflect.String {
		max, _ := strconv.Atoi(params[0])
		return MaxLenString(field, value.String(), max)
	}
	if value.Kind() == reflect.Slice {
		max, _ := strconv.Atoi(params[0])
		r := MaxLenString(field, "", max)
		r.Check = func() bool { return value.Len() <= max }
		r.Error.Message = "must have at most " + params[0] + " items"
		r.Error.TranslationKey = "validation.max_items"
		return r
	}
	if n, ok := numeric(value); ok {
		max, _ := strconv.ParseFloat(params[0], 64)
		return Max(field, n, max)
	}
	return pass()
}

func betweenValidator(field string, value reflect.Value, params []string) Rule {
	n, ok := numeric(value)
	if !ok || len(params) < 2 {
		return pass()
	}
	min, _ := strconv.ParseFloat(params[0], 64)
	max, _ := strconv.ParseFloat(params[1], 64)
	return InRange(field, n, min, max)
}

func phoneValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return ValidPhone(field, value.String())
}

func digitsValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	n := 0
	if len(params) > 0 {
		n, _ = strconv.Atoi(params[0])
	}
	return ValidDigits(field, value.String(), n)
}

func inValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) == 0 {
		return pass()
	}
	if value.Kind() == reflect.String {
		return OneOf(field, value.String(), params)
	}
	if value.Kind() == reflect.Int || value.Kind() == reflect.Int64 || value.Kind() == reflect.Int32 {
		return OneOf(field, strconv.FormatInt(value.Int(), 10), params)
	}
	return pass()
}

func positiveValidator(field string, value reflect.Value, params []string) Rule {
	n, ok := numeric(value)
	if !ok {
		return pass()
	}
	return Positive(field, n)
}

func latitudeValidator(field string, value reflect.Value, params []string) Rule {
	n, ok := numeric(value)
	if !ok {
		return pass()
	}
	return Latitude(field, n)
}

func longitudeValidator(field string, value reflect.Value, params []string) Rule {
	n, ok := numeric(value)
	if !ok {
		return pass()
	}
	return Longitude(field, n)
}

func pastValidator(field string, value reflect.Value, params []string) Rule {
	t, ok := value.Interface().(time.Time)
	if !ok {
		return pass()
	}
	return PastDate(field, t, time.Now())
}
