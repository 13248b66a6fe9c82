// Package env fills configuration structs from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// Validator is implemented by config sections that check themselves.
type Validator interface {
	Validate() error
}

// ErrInvalidValue reports a variable (or default) that does not parse.
type ErrInvalidValue struct {
	Field  string // dotted path from the root struct, e.g. "HTTP.Port"
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is not given a pointer to a struct.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned for a tagged field of a kind Load cannot set.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

var durationType = reflect.TypeFor[time.Duration]()

// Load fills the struct v points to.
//
// A field tagged env:"NAME" takes $NAME when it is set, even to the empty
// string; otherwise its default:"..." tag if present; otherwise it is left
// alone. Fields may be string, bool, any signed integer, or time.Duration
// (written like "5s"). Untagged struct fields are sections and are walked
// recursively; embedded structs share their parent's namespace.
//
// Every unparseable value is reported, joined into one error. Only when all
// values parse are the Validate methods run: each section's, then the root's.
func Load(v any) error {
	ptrVal := reflect.ValueOf(v)
	if ptrVal.Kind() != reflect.Pointer || ptrVal.IsNil() || ptrVal.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}

	var sections []Validator
	if err := load(ptrVal.Elem(), "", &sections); err != nil {
		return err
	}

	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if root, ok := v.(Validator); ok {
		return root.Validate()
	}
	return nil
}

// load sets the fields of val and collects its sections' validators,
// innermost first.
func load(val reflect.Value, path string, sections *[]Validator) error {
	typ := val.Type()
	var errs []error

	for i := range val.NumField() {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		name := sf.Name
		if path != "" {
			name = path + "." + sf.Name
		}

		envKey, tagged := sf.Tag.Lookup("env")
		if !tagged && field.Kind() == reflect.Struct {
			sectionPath := name
			if sf.Anonymous {
				sectionPath = path
			}
			if err := load(field, sectionPath, sections); err != nil {
				errs = append(errs, err)
				continue
			}
			if v, ok := field.Addr().Interface().(Validator); ok {
				*sections = append(*sections, v)
			}
			continue
		}
		if envKey == "" {
			continue
		}

		value, ok := os.LookupEnv(envKey)
		if !ok {
			if value, ok = sf.Tag.Lookup("default"); !ok {
				continue
			}
		}

		if err := set(field, value); err != nil {
			errs = append(errs, ErrInvalidValue{Field: name, EnvVar: envKey, Value: value, Err: err})
		}
	}

	return errors.Join(errs...)
}

func set(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}
