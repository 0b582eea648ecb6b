package neomap

import "errors"

// ErrNotFound is a sentinel error returned by Find operations when no record
// matching the criteria is found in the database.
var ErrNotFound = errors.New("record not found")

// Translation errors. They are a deterministic function of the type metadata
// and the row content, so none of them is worth retrying.
var (
	// ErrAnchorNotFound is returned when a row holds no node carrying any of
	// the target type's labels.
	ErrAnchorNotFound = errors.New("anchor node not found")

	// ErrNotConstructible is returned when a target type has no usable zero
	// value to populate (it is not a struct or a pointer to a struct).
	ErrNotConstructible = errors.New("type cannot be constructed")

	// ErrMissingRequiredRelationship is returned when a single-valued
	// relationship field matches no edge in the row.
	ErrMissingRequiredRelationship = errors.New("missing required relationship")

	// ErrAmbiguousRelationship is returned when a single-valued relationship
	// field matches more than one edge in the row.
	ErrAmbiguousRelationship = errors.New("ambiguous relationship")

	// ErrInvalidDirection is returned for a relationship direction other than
	// Outgoing or Incoming.
	ErrInvalidDirection = errors.New("invalid relationship direction")

	// ErrDuplicateProjectionName is returned when two cells of a row yield the
	// same projection name.
	ErrDuplicateProjectionName = errors.New("duplicate projection name")

	// ErrMalformedProjection is returned when a projection value does not have
	// the map or list-of-maps shape its field requires.
	ErrMalformedProjection = errors.New("malformed projection")

	// ErrUnresolvedMatchOnField is returned when a correlated projection names
	// a matchOn field the owning type does not have.
	ErrUnresolvedMatchOnField = errors.New("unresolved matchOn field")

	// ErrInvalidTag is returned when a `neo` struct tag cannot be parsed.
	ErrInvalidTag = errors.New("invalid neo tag")

	// ErrTypeMismatch is returned when a native value cannot be stored in the
	// field it is mapped to.
	ErrTypeMismatch = errors.New("value does not fit field type")
)
