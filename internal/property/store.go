// Package property implements the named property store that commands resolve
// parameter values against: ${Name} substitution plus path formatter codes.
package property

import (
	"fmt"
	"regexp"

	"geoflow/internal/model"
)

// Built-in properties, set once at workflow start.
const (
	WorkingDirProperty = "WorkingDir"
	TempDirProperty    = "TempDir"
)

// MissingPropertyError reports a Get for a name that was never set.
type MissingPropertyError struct {
	Name string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("property %q is not set", e.Name)
}

// ImmutablePropertyError reports a second Set on a write-once property.
type ImmutablePropertyError struct {
	Name string
}

func (e *ImmutablePropertyError) Error() string {
	return fmt.Sprintf("property %q is write-once and already set", e.Name)
}

// Store maps property names to typed values. WorkingDir and TempDir become
// immutable after their first Set; everything else has overwrite semantics.
type Store struct {
	values map[string]model.Value
	sealed map[string]bool
}

func NewStore() *Store {
	return &Store{
		values: make(map[string]model.Value),
		sealed: make(map[string]bool),
	}
}

// Set stores a value under name. Setting a sealed built-in a second time
// returns ImmutablePropertyError and leaves the stored value untouched.
func (s *Store) Set(name string, value model.Value) error {
	if s.sealed[name] {
		return &ImmutablePropertyError{Name: name}
	}
	s.values[name] = value
	if name == WorkingDirProperty || name == TempDirProperty {
		s.sealed[name] = true
	}
	return nil
}

// SetString is shorthand for Set with a string value.
func (s *Store) SetString(name, value string) error {
	return s.Set(name, model.StringValue(value))
}

// Get returns the stored value, or MissingPropertyError.
func (s *Store) Get(name string) (model.Value, error) {
	v, ok := s.values[name]
	if !ok {
		return model.Value{}, &MissingPropertyError{Name: name}
	}
	return v, nil
}

// GetDefault returns the stored value's string form, or def when unset.
func (s *Store) GetDefault(name, def string) string {
	v, ok := s.values[name]
	if !ok {
		return def
	}
	return v.Render()
}

func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// token matches ${Name} and ${Name:Code}. Code selects a path formatter
// applied to the resolved property value; expansion always happens first.
var token = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9_]*)(?::([A-Za-z]+))?\}`)

// Expand substitutes every ${Name} token in raw with the property's string
// form. Tokens that cannot be resolved (unset property, unknown formatter
// code) stay verbatim and their spelled form is returned in unresolved; the
// store never logs, the caller decides how loud to be about it.
func (s *Store) Expand(raw string) (expanded string, unresolved []string) {
	expanded = token.ReplaceAllStringFunc(raw, func(match string) string {
		parts := token.FindStringSubmatch(match)
		name, code := parts[1], parts[2]

		v, ok := s.values[name]
		if !ok {
			unresolved = append(unresolved, spelledToken(name, code))
			return match
		}
		if code == "" {
			return v.Render()
		}
		formatted, err := ApplyFormatter(v.Render(), FormatterCode(code))
		if err != nil {
			unresolved = append(unresolved, spelledToken(name, code))
			return match
		}
		return formatted
	})
	return expanded, unresolved
}

func spelledToken(name, code string) string {
	if code == "" {
		return name
	}
	return name + ":" + code
}
