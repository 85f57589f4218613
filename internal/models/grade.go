package models

import "time"

// GradeRecord stores an instructor-issued grade on the 0-10 scale. ModuleID is
// nil for the course-final grade; at most one course-final record per
// enrollment is authoritative, and recording again overwrites it.
type GradeRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;index" json:"enrollment_id"`
	ModuleID     *uint     `gorm:"index" json:"module_id"`
	Scale        float64   `gorm:"not null" json:"scale"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedBy     *uint     `json:"graded_by"`
	GradedAt     time.Time `gorm:"not null" json:"graded_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsCourseFinal reports whether the record is the course-level final grade.
func (g GradeRecord) IsCourseFinal() bool {
	return g.ModuleID == nil
}

// Passed reports whether the grade meets the given threshold.
func (g GradeRecord) Passed(threshold float64) bool {
	return g.Scale >= threshold
}
