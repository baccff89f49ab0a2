package settings

import "strconv"

// Scalar lists the types Get and SetValue convert to and from strings.
type Scalar interface {
	bool | int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | string
}

// Get returns the stored value of key converted to T, or def when key is not
// stored. Unparsable numbers convert to zero.
func Get[T Scalar](s *Settings, key string, def T) T {
	value, ok := s.Get(key)
	if !ok {
		return def
	}
	return Convert[T](value)
}

// SetValue stores v under key in its string form.
func SetValue[T Scalar](s *Settings, key string, v T) error {
	return s.Set(key, Format(v))
}

// Convert parses a stored string as T.
func Convert[T Scalar](value string) T {
	var out T
	switch p := any(&out).(type) {
	case *bool:
		*p = ParseBool(value)
	case *int:
		*p = int(parseInt(value, strconv.IntSize))
	case *int8:
		*p = int8(parseInt(value, 8))
	case *int16:
		*p = int16(parseInt(value, 16))
	case *int32:
		*p = int32(parseInt(value, 32))
	case *int64:
		*p = parseInt(value, 64)
	case *uint:
		*p = uint(parseUint(value, strconv.IntSize))
	case *uint8:
		*p = uint8(parseUint(value, 8))
	case *uint16:
		*p = uint16(parseUint(value, 16))
	case *uint32:
		*p = uint32(parseUint(value, 32))
	case *uint64:
		*p = parseUint(value, 64)
	case *float32:
		f, _ := strconv.ParseFloat(value, 32)
		*p = float32(f)
	case *float64:
		*p, _ = strconv.ParseFloat(value, 64)
	case *string:
		*p = value
	}
	return out
}

// Format renders v the way it is stored.
func Format[T Scalar](v T) string {
	switch x := any(v).(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 3, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', 3, 64)
	case string:
		return x
	}
	return ""
}

// ParseBool accepts "1 y yes true on" as true. Everything else, including
// "0 n no false off", is false.
func ParseBool(value string) bool {
	switch value {
	case "1", "y", "yes", "true", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, bits int) int64 {
	n, err := strconv.ParseInt(value, 10, bits)
	if err != nil {
		return 0
	}
	return n
}

// unsigned values also accept 0x, 0o and 0b prefixes
func parseUint(value string, bits int) uint64 {
	n, err := strconv.ParseUint(value, 0, bits)
	if err != nil {
		return 0
	}
	return n
}
