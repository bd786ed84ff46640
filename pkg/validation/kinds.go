package validation

import (
	"fmt"
	"reflect"
	"strconv"
)

// prepare adapts value to what the validator tag accepts. Attributes usually come
// back from JSON, so numbers arrive as float64 and must not reach tags that only
// handle strings and integers. It reports false when no adaptation exists.
func prepare(tag string, value any) (any, bool) {
	rv := reflect.ValueOf(value)
	kind := rv.Kind()

	switch tag {
	case "email", "url", "uuid", "alpha", "alphanum":
		return value, kind == reflect.String
	case "numeric":
		return value, kind == reflect.String || isNumber(kind)
	case "min", "max", "len":
		switch {
		case kind == reflect.String, isNumber(kind):
			return value, true
		case kind == reflect.Slice, kind == reflect.Map, kind == reflect.Array:
			return value, true
		}
		return nil, false
	case "oneof":
		// oneof compares string forms; whole floats print without a fraction.
		switch {
		case kind == reflect.String:
			return rv.String(), true
		case kind == reflect.Bool:
			return strconv.FormatBool(rv.Bool()), true
		case isInt(kind):
			return strconv.FormatInt(rv.Int(), 10), true
		case isUint(kind):
			return strconv.FormatUint(rv.Uint(), 10), true
		case kind == reflect.Float32 || kind == reflect.Float64:
			return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
		}
		return nil, false
	}
	return value, true
}

func unsupported(field, tag string, value any) string {
	switch tag {
	case "email", "url", "uuid", "alpha", "alphanum":
		return fmt.Sprintf("The %s field must be a string.", field)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return fmt.Sprintf("The %s field cannot be checked by the %s rule (got %T).", field, tag, value)
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
