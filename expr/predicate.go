// Package expr parses and evaluates boolean tag expressions of the form
// `era = "ww1" AND NOT (country exists OR era != "modern")`. An expression is
// compiled once into a Predicate tree and evaluated against the tag multiset
// of one entity at a time.
package expr

import (
	"strconv"

	"github.com/opentimeline/opentimeline/model"
)

// Predicate is the parsed, evaluable form of a boolean tag expression.
// Evaluation is pure: it never mutates the tags and always returns the same
// result for the same input.
type Predicate interface {
	// Eval reports whether the tag multiset satisfies the predicate.
	Eval(tags model.Tags) bool
	String() string
}

type andPredicate struct {
	left, right Predicate
}

func (p andPredicate) Eval(tags model.Tags) bool {
	return p.left.Eval(tags) && p.right.Eval(tags)
}

func (p andPredicate) String() string {
	return "(" + p.left.String() + " AND " + p.right.String() + ")"
}

type orPredicate struct {
	left, right Predicate
}

func (p orPredicate) Eval(tags model.Tags) bool {
	return p.left.Eval(tags) || p.right.Eval(tags)
}

func (p orPredicate) String() string {
	return "(" + p.left.String() + " OR " + p.right.String() + ")"
}

type notPredicate struct {
	inner Predicate
}

func (p notPredicate) Eval(tags model.Tags) bool {
	return !p.inner.Eval(tags)
}

func (p notPredicate) String() string {
	return "NOT " + p.inner.String()
}

// equalsPredicate is true iff at least one tag with the name has exactly the
// value.
type equalsPredicate struct {
	name  string
	value string
}

func (p equalsPredicate) Eval(tags model.Tags) bool {
	return tags.HasNameValue(p.name, p.value)
}

func (p equalsPredicate) String() string {
	return p.name + " = " + strconv.Quote(p.value)
}

// notEqualsPredicate is true iff the name is present but never with the
// value: "has the tag, but not with this value". A wholly absent tag name
// evaluates to false, so absence is never silently treated as a match.
type notEqualsPredicate struct {
	name  string
	value string
}

func (p notEqualsPredicate) Eval(tags model.Tags) bool {
	return tags.HasName(p.name) && !tags.HasNameValue(p.name, p.value)
}

func (p notEqualsPredicate) String() string {
	return p.name + " != " + strconv.Quote(p.value)
}

type existsPredicate struct {
	name string
}

func (p existsPredicate) Eval(tags model.Tags) bool {
	return tags.HasName(p.name)
}

func (p existsPredicate) String() string {
	return p.name + " exists"
}

type notExistsPredicate struct {
	name string
}

func (p notExistsPredicate) Eval(tags model.Tags) bool {
	return !tags.HasName(p.name)
}

func (p notExistsPredicate) String() string {
	return p.name + " not exists"
}
