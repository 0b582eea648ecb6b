package neomap

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// coerceInto stores native in dst, converting the driver representation to
// the declared field type. A nil native value leaves dst untouched.
//
// Supported conversions:
//   - identity for scalars, and any value assignable to dst
//   - collections of the field's own type, copied rather than shared
//   - numeric kinds between each other, with overflow checks
//   - any scalar to string
//   - driver temporal values to time.Time, driver durations to time.Duration
//   - lists to slices, arrays and sets (map[T]struct{} or map[T]bool)
//   - maps to maps, keys and values coerced independently
//   - pointers, allocated and filled from the same native value
func coerceInto(dst reflect.Value, native any) error {
	if native == nil {
		return nil
	}
	t := dst.Type()
	src := reflect.ValueOf(native)

	// Collections are rebuilt so no output value shares memory with the row.
	if src.Type() == t {
		switch t.Kind() {
		case reflect.Slice:
			return coerceSlice(dst, src)
		case reflect.Array:
			return coerceArray(dst, src)
		case reflect.Map:
			return coerceMap(dst, src)
		}
		dst.Set(src)
		return nil
	}
	if t.Kind() == reflect.Interface && src.Type().Implements(t) {
		dst.Set(reflect.ValueOf(cloneNative(native)))
		return nil
	}

	switch t {
	case timeType:
		if tm, ok := toTime(native); ok {
			dst.Set(reflect.ValueOf(tm))
			return nil
		}
		return mismatch(native, t)
	case durationType:
		if d, ok := toDuration(native); ok {
			dst.SetInt(int64(d))
			return nil
		}
		return mismatch(native, t)
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := reflect.New(t.Elem())
		if err := coerceInto(elem.Elem(), native); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Slice:
		return coerceSlice(dst, src)
	case reflect.Array:
		return coerceArray(dst, src)
	case reflect.Map:
		return coerceMap(dst, src)
	case reflect.String:
		return coerceString(dst, src)
	case reflect.Bool:
		if src.Kind() == reflect.Bool {
			dst.SetBool(src.Bool())
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return coerceNumber(dst, src)
	}

	if src.Type().AssignableTo(t) {
		dst.Set(src)
		return nil
	}
	// Driver temporal types are defined on time.Time and convert both ways.
	if src.Kind() == reflect.Struct && src.Type().ConvertibleTo(t) {
		dst.Set(src.Convert(t))
		return nil
	}
	return mismatch(native, t)
}

func mismatch(native any, t reflect.Type) error {
	return fmt.Errorf("%w: cannot store %T in %s", ErrTypeMismatch, native, t)
}

func toTime(native any) (time.Time, bool) {
	switch v := native.(type) {
	case time.Time:
		return v, true
	case dbtype.Date:
		return time.Time(v), true
	case dbtype.LocalDateTime:
		return time.Time(v), true
	case dbtype.LocalTime:
		return time.Time(v), true
	case dbtype.Time:
		return time.Time(v), true
	}
	return time.Time{}, false
}

// toDuration converts a driver duration. Months have no fixed length and
// cannot be expressed as a time.Duration.
func toDuration(native any) (time.Duration, bool) {
	switch v := native.(type) {
	case time.Duration:
		return v, true
	case dbtype.Duration:
		if v.Months != 0 {
			return 0, false
		}
		const (
			maxDays    = math.MaxInt64 / int64(24*time.Hour)
			maxSeconds = math.MaxInt64 / int64(time.Second)
		)
		if v.Days > maxDays || v.Days < -maxDays || v.Seconds > maxSeconds || v.Seconds < -maxSeconds {
			return 0, false
		}
		d, ok := addDuration(v.Days*int64(24*time.Hour), v.Seconds*int64(time.Second))
		if !ok {
			return 0, false
		}
		d, ok = addDuration(d, int64(v.Nanos))
		return time.Duration(d), ok
	}
	return 0, false
}

// addDuration adds two nanosecond counts, reporting false on overflow.
func addDuration(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// cloneNative copies the lists, maps and byte slices of a driver value so
// the result can be handed out without aliasing the row.
func cloneNative(v any) any {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneNative(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneNative(item)
		}
		return out
	case []byte:
		return append([]byte(nil), v...)
	}
	return v
}

func isList(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func coerceSlice(dst, src reflect.Value) error {
	t := dst.Type()
	if t.Elem().Kind() == reflect.Uint8 && src.Kind() == reflect.Slice && src.Type().Elem().Kind() == reflect.Uint8 {
		dst.SetBytes(append([]byte(nil), src.Bytes()...))
		return nil
	}
	if !isList(src) {
		return mismatch(src.Interface(), t)
	}

	out := reflect.MakeSlice(t, src.Len(), src.Len())
	for i := 0; i < src.Len(); i++ {
		if err := coerceInto(out.Index(i), src.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

func coerceArray(dst, src reflect.Value) error {
	if !isList(src) {
		return mismatch(src.Interface(), dst.Type())
	}
	out := reflect.New(dst.Type()).Elem()
	for i := 0; i < src.Len() && i < out.Len(); i++ {
		if err := coerceInto(out.Index(i), src.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

// isSet reports whether a map type is used as a set of its keys.
func isSet(t reflect.Type) bool {
	elem := t.Elem()
	return elem.Kind() == reflect.Bool || (elem.Kind() == reflect.Struct && elem.NumField() == 0)
}

func coerceMap(dst, src reflect.Value) error {
	t := dst.Type()
	switch {
	case src.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(t, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(t.Key()).Elem()
			if err := coerceInto(k, iter.Key().Interface()); err != nil {
				return fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			v := reflect.New(t.Elem()).Elem()
			if err := coerceInto(v, iter.Value().Interface()); err != nil {
				return fmt.Errorf("key %v: %w", iter.Key(), err)
			}
			out.SetMapIndex(k, v)
		}
		dst.Set(out)
		return nil
	case isList(src) && isSet(t):
		member := reflect.New(t.Elem()).Elem()
		if member.Kind() == reflect.Bool {
			member.SetBool(true)
		}
		out := reflect.MakeMapWithSize(t, src.Len())
		for i := 0; i < src.Len(); i++ {
			k := reflect.New(t.Key()).Elem()
			if err := coerceInto(k, src.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			out.SetMapIndex(k, member)
		}
		dst.Set(out)
		return nil
	}
	return mismatch(src.Interface(), t)
}

func coerceString(dst, src reflect.Value) error {
	switch src.Kind() {
	case reflect.String:
		dst.SetString(src.String())
		return nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		dst.SetString(fmt.Sprint(src.Interface()))
		return nil
	}
	if s, ok := src.Interface().(fmt.Stringer); ok {
		dst.SetString(s.String())
		return nil
	}
	return mismatch(src.Interface(), dst.Type())
}

func coerceNumber(dst, src reflect.Value) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = src.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := src.Uint()
			if u > 1<<63-1 {
				return overflow(src, dst)
			}
			n = int64(u)
		default:
			return mismatch(src.Interface(), dst.Type())
		}
		if dst.OverflowInt(n) {
			return overflow(src, dst)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var u uint64
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if src.Int() < 0 {
				return overflow(src, dst)
			}
			u = uint64(src.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u = src.Uint()
		default:
			return mismatch(src.Interface(), dst.Type())
		}
		if dst.OverflowUint(u) {
			return overflow(src, dst)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		var f float64
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(src.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(src.Uint())
		case reflect.Float32, reflect.Float64:
			f = src.Float()
		default:
			return mismatch(src.Interface(), dst.Type())
		}
		if dst.OverflowFloat(f) {
			return overflow(src, dst)
		}
		dst.SetFloat(f)
	}
	return nil
}

func overflow(src, dst reflect.Value) error {
	return fmt.Errorf("%w: %v overflows %s", ErrTypeMismatch, src.Interface(), dst.Type())
}
