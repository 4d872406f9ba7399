// Package validation gates raw request input against static per-operation
// rule tables before anything reaches the translator or storage.
package validation

import "net/url"

// Source names where a field is read from.
type Source int

const (
	SourcePath Source = iota + 1
	SourceQuery
	SourceBody
)

// Type is the value shape a field must have.
type Type int

const (
	TypeInteger Type = iota + 1
	TypeString
	TypeBoolean
	TypeDate
	TypeObjectID
)

// Presence controls when a missing field is a violation.
type Presence int

const (
	Optional Presence = iota
	Required
	// RequiredWith makes the field required iff Rule.With is present.
	RequiredWith
)

// Rule describes one field. Constraints only apply to integer fields and are
// skipped when the type check already failed.
type Rule struct {
	Field    string
	In       Source
	Type     Type
	Presence Presence
	With     string

	Min        *int64
	Max        *int64
	OneOf      []int64
	MultipleOf int64
	// MeanOf names two sibling body fields; when both are present the field
	// must equal their rounded average.
	MeanOf [2]string
}

// RuleSet is evaluated in full; order only affects the order of violations.
type RuleSet []Rule

// Input is the raw, undecoded request data for one operation.
type Input struct {
	Path  map[string]string
	Query url.Values
	Body  map[string]any
}
