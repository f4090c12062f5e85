package model

// Warning codes for recoverable data-quality problems.
const (
	WarnBirthDate       = "unparsable_birth_date"
	WarnDuplicateID     = "duplicate_swimmer"
	WarnUnknownSwimmer  = "record_for_unknown_swimmer"
	WarnInvalidRecord   = "invalid_record"
	WarnMissingStandard = "missing_standard"
	WarnDuplicatePin    = "duplicate_pin"
	WarnPinWithoutTime  = "pinned_without_time"
)

// Warning is a data-quality problem the run recovered from.
type Warning struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SwimmerID string `json:"swimmerId,omitempty"`
	Slot      string `json:"slot,omitempty"`
}
