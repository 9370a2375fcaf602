// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dot-notation key such as "inference.model",
// formatted as a string.
func (c *Config) Get(key string) (string, error) {
	field, err := c.lookup(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(field.Interface()), nil
}

// Set parses value for the field at key and stores it. The config is not
// validated; call Validate afterwards.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer value %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("%s: invalid boolean value %q", key, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s: unsupported field type %s", key, field.Kind())
	}
	return nil
}

// lookup walks the struct by toml tag names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) != 2 {
		return reflect.Value{}, fmt.Errorf("unknown key %q, expected section.name", key)
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		next, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", strings.Join(parts[:i+1], "."))
		}
		v = next
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s is a section, not a setting", key)
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tagName(f) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tagName(f reflect.StructField) string {
	tag, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return tag
}

// AllKeys returns every setting in dot notation, in declaration order.
func AllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		if !section.IsExported() || section.Type.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, tagName(section)+"."+tagName(section.Type.Field(j)))
		}
	}
	return keys
}
