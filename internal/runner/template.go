package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ExpandTemplates rewrites ${VAR} references in place in the struct (or slice
// of structs) pointed to by in.
//
// Strings, *string and []string fields are expanded only when tagged with
// `template` (`template:"-"` opts out). map[string]string values are always
// expanded. Nested structs, *struct and slices of either are walked without a
// tag. Unexported fields are left alone.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	e := expander{variables: variables}
	v := reflect.ValueOf(in).Elem()
	switch v.Kind() {
	case reflect.Struct:
		return e.structValue(v)
	case reflect.Slice:
		return e.slice(v)
	default:
		return fmt.Errorf("ExpandTemplates expects *struct or *[]struct; got *%s", v.Type())
	}
}

var stringMapType = reflect.TypeFor[map[string]string]()

type expander struct {
	variables map[string]string
}

func (e expander) setString(v reflect.Value) error {
	expanded, err := Expand(v.String(), e.variables)
	if err != nil {
		return err
	}
	v.SetString(expanded)
	return nil
}

func (e expander) slice(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}

	elem := v.Type().Elem()
	for i := range v.Len() {
		el := v.Index(i)

		var err error
		switch {
		case elem.Kind() == reflect.String:
			err = e.setString(el)
		case elem.Kind() == reflect.Struct:
			err = e.structValue(el)
		case elem.Kind() == reflect.Pointer && elem.Elem().Kind() == reflect.Struct:
			if !el.IsNil() {
				err = e.structValue(el.Elem())
			}
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e expander) structValue(v reflect.Value) error {
	typ := v.Type()
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, tagged := sf.Tag.Lookup("template")
		tagged = tagged && tag != "-"

		if err := e.field(v.Field(i), tagged); err != nil {
			return fmt.Errorf("%s: %w", sf.Name, err)
		}
	}
	return nil
}

func (e expander) field(field reflect.Value, tagged bool) error {
	switch field.Kind() {
	case reflect.String:
		if !tagged {
			return nil
		}
		return e.setString(field)

	case reflect.Pointer:
		if field.IsNil() {
			return nil
		}
		elem := field.Elem()
		switch elem.Kind() {
		case reflect.String:
			if !tagged {
				return nil
			}
			expanded, err := Expand(elem.String(), e.variables)
			if err != nil {
				return err
			}
			// Replace the pointer rather than writing through a possibly shared one.
			ptr := reflect.New(elem.Type())
			ptr.Elem().SetString(expanded)
			field.Set(ptr)
		case reflect.Struct:
			return e.structValue(elem)
		}
		return nil

	case reflect.Map:
		if field.IsNil() || field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		plain := field.Convert(stringMapType).Interface().(map[string]string)
		expanded, err := ExpandMap(plain, e.variables)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(expanded).Convert(field.Type()))
		return nil

	case reflect.Struct:
		return e.structValue(field)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String && !tagged {
			return nil
		}
		return e.slice(field)
	}
	return nil
}

// Expand replaces ${VAR} references in value. Every referenced variable must
// be present in variables.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("variable %q is not defined or not in the allowed environment list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}

// ExpandMap expands every value of values into a new map.
func ExpandMap(values map[string]string, variables map[string]string) (map[string]string, error) {
	if values == nil {
		return nil, nil
	}

	result := make(map[string]string, len(values))
	var errs error

	for k, v := range values {
		expanded, err := Expand(v, variables)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		result[k] = expanded
	}

	if errs != nil {
		return nil, errs
	}

	return result, nil
}
