// Package element defines the UI element descriptor record that the
// matching engine operates on, together with the corpus container that
// mirrors the persisted elements file layout.
package element

import "strings"

// Element is a multi-field textual descriptor of a UI element. Every field
// is optional; an empty (or whitespace-only) value means the attribute is
// absent. Unknown JSON fields are ignored on decode, absent fields are
// omitted on encode.
type Element struct {
	ElementID       string `json:"element_id,omitempty"`
	XPath           string `json:"xpath,omitempty"`
	AccessibilityID string `json:"accessibility_id,omitempty"`
	ClassName       string `json:"class_name,omitempty"`
	Name            string `json:"name,omitempty"`
	Screen          string `json:"screen,omitempty"`
	ElementType     string `json:"element_type,omitempty"`
}

// Corpus is the searchable collection of known elements. It matches the
// on-disk layout of the elements file.
type Corpus struct {
	TestElements []Element `json:"test_elements"`
}

// HasValue reports whether a field value is present and non-empty after
// trimming.
func HasValue(value string) bool {
	return strings.TrimSpace(value) != ""
}

// HasElementID reports whether the element carries an identity.
func (e Element) HasElementID() bool {
	return HasValue(e.ElementID)
}

// SameIdentity reports whether both elements carry the same non-empty
// element_id. Elements without an id have undefined identity and never
// compare equal.
func (e Element) SameIdentity(other Element) bool {
	return e.HasElementID() && e.ElementID == other.ElementID
}

// KeyIdentifier returns the most identifying field of the element:
// accessibility_id, else name, else element_id, else "".
func (e Element) KeyIdentifier() string {
	if HasValue(e.AccessibilityID) {
		return e.AccessibilityID
	}
	if HasValue(e.Name) {
		return e.Name
	}
	if HasValue(e.ElementID) {
		return e.ElementID
	}
	return ""
}
