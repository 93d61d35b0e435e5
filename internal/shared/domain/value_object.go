package domain

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// StaffID and ClientID are typed wrappers around the plain caller-supplied
// roster identifiers. The engine's internal hot path (occupancy masks,
// constructive scheduler) works with bare strings and dense indices; these
// wrappers exist only at the request/result boundary (cmd/scheduler's JSON
// encoding) so a StaffID can't be passed where a ClientID is expected.
type StaffID struct {
	value string
}

// NewStaffID creates a new StaffID from a string.
func NewStaffID(value string) StaffID {
	return StaffID{value: value}
}

// String returns the string representation of the StaffID.
func (s StaffID) String() string { return s.value }

// Equals checks if two StaffIDs are equal.
func (s StaffID) Equals(other ValueObject) bool {
	if o, ok := other.(StaffID); ok {
		return s.value == o.value
	}
	return false
}

// IsEmpty returns true if the StaffID is empty.
func (s StaffID) IsEmpty() bool { return s.value == "" }

// ClientID is the client-side counterpart to StaffID.
type ClientID struct {
	value string
}

// NewClientID creates a new ClientID from a string.
func NewClientID(value string) ClientID {
	return ClientID{value: value}
}

// String returns the string representation of the ClientID.
func (c ClientID) String() string { return c.value }

// Equals checks if two ClientIDs are equal.
func (c ClientID) Equals(other ValueObject) bool {
	if o, ok := other.(ClientID); ok {
		return c.value == o.value
	}
	return false
}

// IsEmpty returns true if the ClientID is empty.
func (c ClientID) IsEmpty() bool { return c.value == "" }
