package enums

import "fmt"

// VerificationStatus tracks the human review of a submitted payment proof.
// The zero value means no proof has ever been submitted.
type VerificationStatus string

const (
	VerificationStatusNone     VerificationStatus = ""
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusPending,
	VerificationStatusVerified,
	VerificationStatusRejected,
}

// String implements fmt.Stringer.
func (v VerificationStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known, submitted VerificationStatus.
func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// Resolved reports whether the review reached a terminal outcome.
// Re-verifying a resolved order is rejected.
func (v VerificationStatus) Resolved() bool {
	return v == VerificationStatusVerified || v == VerificationStatusRejected
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
