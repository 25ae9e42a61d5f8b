package enums

import "fmt"

// ExportStatus tracks the lifecycle of an export job. Jobs are terminal
// at completed or failed and never reused.
type ExportStatus string

const (
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
)

var validExportStatuses = []ExportStatus{
	ExportStatusProcessing,
	ExportStatusCompleted,
	ExportStatusFailed,
}

// String implements fmt.Stringer.
func (e ExportStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExportStatus.
func (e ExportStatus) IsValid() bool {
	for _, candidate := range validExportStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// Terminal reports whether the job can no longer change state.
func (e ExportStatus) Terminal() bool {
	return e == ExportStatusCompleted || e == ExportStatusFailed
}

// ParseExportStatus converts raw input into an ExportStatus.
func ParseExportStatus(value string) (ExportStatus, error) {
	for _, candidate := range validExportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export status %q", value)
}
