package models

// Credential is one login for the profiling application.
// It is immutable once loaded.
type Credential struct {
	Identity string
	Secret   string
}

// String returns the identity only so credentials can be logged safely.
func (c Credential) String() string {
	return c.Identity
}

// DomainTask is one target domain and its position in the input list.
type DomainTask struct {
	Domain string
	Index  int
}
