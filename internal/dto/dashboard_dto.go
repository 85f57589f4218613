package dto

// LearnerDashboardResponse aggregates a learner's enrollments with progress,
// gradebook, eligibility and certificate state.
type LearnerDashboardResponse struct {
	LearnerID   uint                 `json:"learner_id"`
	Summary     DashboardSummary     `json:"summary"`
	Enrollments []EnrollmentOverview `json:"enrollments"`
	CacheHit    bool                 `json:"-"`
}

// DashboardSummary counts enrollments by derived status.
type DashboardSummary struct {
	TotalEnrollments int `json:"total_enrollments"`
	NotStarted       int `json:"not_started"`
	InProgress       int `json:"in_progress"`
	Eligible         int `json:"eligible"`
	Certified        int `json:"certified"`
}

// EnrollmentOverview is one dashboard row.
type EnrollmentOverview struct {
	EnrollmentID uint                 `json:"enrollment_id"`
	CourseID     uint                 `json:"course_id"`
	CourseTitle  string               `json:"course_title"`
	Status       string               `json:"status"`
	Progress     ProgressSnapshot     `json:"progress"`
	Gradebook    GradebookAggregate   `json:"gradebook"`
	Eligibility  EligibilityResult    `json:"eligibility"`
	Certificate  *CertificateResponse `json:"certificate"`
}
