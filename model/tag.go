package model

import "fmt"

// Tag is a (name, value) annotation on an entity or timeline. The name may be
// nil (an anonymous value tag); the value is always set. The same (name,
// value) pair may appear more than once on one record.
type Tag struct {
	Name  *string `json:"name"`
	Value string  `json:"value"`
}

// NamedTag creates a tag with a name.
func NamedTag(name, value string) Tag {
	return Tag{Name: &name, Value: value}
}

// AnonymousTag creates a tag without a name.
func AnonymousTag(value string) Tag {
	return Tag{Value: value}
}

// String renders the tag as it would appear in an expression, e.g.
// `kind = "battle"` or `"naval"` for an anonymous tag.
func (t Tag) String() string {
	if t.Name == nil {
		return fmt.Sprintf("%q", t.Value)
	}
	return fmt.Sprintf("%s = %q", *t.Name, t.Value)
}

// Tags is a flat multiset of tags. It is deliberately not a map: duplicate
// pairs and anonymous tags are valid data.
type Tags []Tag

// HasName reports whether any tag carries the given name.
func (t Tags) HasName(name string) bool {
	for _, tag := range t {
		if tag.Name != nil && *tag.Name == name {
			return true
		}
	}
	return false
}

// HasNameValue reports whether any tag carries the given name with exactly
// the given value.
func (t Tags) HasNameValue(name, value string) bool {
	for _, tag := range t {
		if tag.Name != nil && *tag.Name == name && tag.Value == value {
			return true
		}
	}
	return false
}

// WithName returns all tags carrying the given name.
func (t Tags) WithName(name string) Tags {
	var matched Tags
	for _, tag := range t {
		if tag.Name != nil && *tag.Name == name {
			matched = append(matched, tag)
		}
	}
	return matched
}
