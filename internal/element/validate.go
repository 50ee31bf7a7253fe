package element

// Validation reasons are human-readable strings, not errors: an invalid
// element is a normal request shape, surfaced to callers as a reason list.
const (
	reasonNilElement    = "Element is null"
	reasonNoIdentifiers = "At least one identifier is required (element_id, xpath, accessibility_id, or class_name)"
)

// Validate checks that the element carries at least one identifying field.
// It returns an empty slice for a valid element.
func Validate(e *Element) []string {
	if e == nil {
		return []string{reasonNilElement}
	}

	if !HasValue(e.ElementID) && !HasValue(e.XPath) &&
		!HasValue(e.AccessibilityID) && !HasValue(e.ClassName) {
		return []string{reasonNoIdentifiers}
	}

	return nil
}

// Searchable reports whether the element carries any field the matching
// workflow can search on. Unlike Validate it accepts name-only elements:
// name participates in matching even though it is not an identifier.
func (e Element) Searchable() bool {
	return HasValue(e.ElementID) || HasValue(e.XPath) ||
		HasValue(e.AccessibilityID) || HasValue(e.ClassName) || HasValue(e.Name)
}
