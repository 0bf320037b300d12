package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/util"
)

// Policy decides what happens to the rest of a table when a row fails to
// decode
type Policy int

const (
	// AbortOnMalformed stops at the first malformed row
	AbortOnMalformed Policy = iota
	// SkipMalformed logs and skips malformed rows
	SkipMalformed
)

// Decoded is a record together with the row it came from
type Decoded[T any] struct {
	Row    int
	Record T
}

// Result holds the records of a table and the rows that were skipped
type Result[T any] struct {
	Records []Decoded[T]
	Skipped []*util.RecordError
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode converts rows into records of type T using the schema
func Decode[T any](rows []table.Row, s Schema, policy Policy) (*Result[T], error) {
	res := &Result[T]{Records: make([]Decoded[T], 0, len(rows))}
	skipped, err := Each[T](rows, s, policy, func(d Decoded[T]) error {
		res.Records = append(res.Records, d)
		return nil
	})
	res.Skipped = skipped
	return res, err
}

// Each decodes rows one at a time and hands every record to fn before the
// next row is decoded, so a failure leaves earlier rows applied. It stops at
// the first error returned by fn, or at the first malformed row unless the
// policy is SkipMalformed.
func Each[T any](rows []table.Row, s Schema, policy Policy, fn func(Decoded[T]) error) ([]*util.RecordError, error) {
	var skipped []*util.RecordError
	for _, row := range rows {
		rec, err := DecodeRow[T](row, s)
		if err != nil {
			var recErr *util.RecordError
			if policy == SkipMalformed && errors.As(err, &recErr) {
				util.WithTable(s.Table).WithField("row", row.Index).Warnf("Skipping malformed row: %v", err)
				skipped = append(skipped, recErr)
				continue
			}
			return skipped, err
		}
		if err := fn(Decoded[T]{Row: row.Index, Record: rec}); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// DecodeRow converts a single row. Only schema fields with non-empty values
// are kept; other columns are ignored.
func DecodeRow[T any](row table.Row, s Schema) (T, error) {
	var rec T
	fail := func(field, format string, args ...interface{}) (T, error) {
		return rec, &util.RecordError{Table: s.Table, Row: row.Index, Field: field, Detail: fmt.Sprintf(format, args...)}
	}

	values := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, _ := row.Get(f.Name)
		if isEmpty(v) {
			if f.Required {
				return fail(f.Name, "required field is missing")
			}
			continue
		}
		cv, err := coerce(v, f.Kind)
		if err != nil {
			return fail(f.Name, "%v", err)
		}
		values[f.Name] = cv
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fail("", "%v", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fail(typeErr.Field, "cannot use %s as %s", typeErr.Value, typeErr.Type)
		}
		return fail("", "%v", err)
	}

	if err := validate.Struct(&rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fail(e.Field(), "%s", describe(e))
		}
		return fail("", "%v", err)
	}
	return rec, nil
}

// describe converts a validator error to a user-friendly message
func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", e.Param(), deref(e.Value()))
	case "max":
		return fmt.Sprintf("must not exceed %s, got %v", e.Param(), deref(e.Value()))
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", e.Param(), deref(e.Value()))
	case "ip", "ipv4":
		return fmt.Sprintf("%v is not a valid IP address", deref(e.Value()))
	}
	return fmt.Sprintf("validation failed (%s)", e.Tag())
}

func deref(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// coerce converts a cell value to the representation expected for kind.
// Spreadsheet exports often carry numbers as floats ("10.0") or strings.
func coerce(v any, kind Kind) (any, error) {
	switch kind {
	case String:
		return toString(v), nil
	case Int:
		return toInt(v)
	case Bool:
		return toBool(v)
	case Prefix:
		p, err := util.ParseIPv4Network(toString(v))
		if err != nil {
			return nil, err
		}
		return p.String(), nil
	case IPv4Interface:
		p, err := util.ParseIPv4Interface(toString(v))
		if err != nil {
			return nil, err
		}
		return p.String(), nil
	case LagMode:
		mode := model.LagMode(strings.ToLower(toString(v)))
		if !mode.Valid() {
			return nil, fmt.Errorf("invalid LAG mode %q", toString(v))
		}
		return string(mode), nil
	}
	return nil, fmt.Errorf("unsupported field kind %d", kind)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func toInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", t)
		}
		return int64(t), nil
	case float64:
		return floatToInt(t)
	case bool:
		return 0, fmt.Errorf("expected integer, got boolean %v", t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
		return 0, fmt.Errorf("%q is not an integer", t)
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

// floatToInt accepts whole floats that fit in an int64. The bounds are
// checked before conversion since int64(f) is undefined outside them.
func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, fmt.Errorf("integer %v out of range", f)
	}
	return int64(f), nil
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int, int64, uint64, float64:
		n, err := toInt(t)
		if err != nil {
			return false, err
		}
		return n != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "x", "enabled":
			return true, nil
		case "false", "no", "n", "0", "disabled":
			return false, nil
		}
		return false, fmt.Errorf("%q is not a boolean", t)
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}
