package dto

// Not-eligible reasons surfaced to callers. The UI maps these to localized
// messages; the engine never translates them.
const (
	ReasonCertificatesDisabled   = "certificates_disabled"
	ReasonInsufficientProgress   = "insufficient_progress"
	ReasonNotGraded              = "not_graded"
	ReasonGradeBelowThreshold    = "grade_below_threshold"
	ReasonInsufficientAttendance = "insufficient_attendance"
)

// EligibilityResult reports whether an enrollment currently satisfies its
// course's certificate policy. Eligibility is a property of the data: an
// already-issued certificate does not change the result.
type EligibilityResult struct {
	Eligible bool                   `json:"eligible"`
	Reason   string                 `json:"reason,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Eligible builds a positive result.
func Eligible() EligibilityResult {
	return EligibilityResult{Eligible: true}
}

// NotEligible builds a negative result with a structured reason.
func NotEligible(reason string, details map[string]interface{}) EligibilityResult {
	return EligibilityResult{Eligible: false, Reason: reason, Details: details}
}
