package models

import (
	"time"

	"gorm.io/datatypes"
)

// Certificate is an immutable proof of course completion. At most one exists
// per (learner, course), enforced by the composite unique index; issuance races
// resolve against that constraint. The qualifying snapshot is frozen at
// issuance and never recomputed.
type Certificate struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	EnrollmentID       uint           `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	LearnerID          uint           `gorm:"not null;uniqueIndex:idx_certificates_learner_course" json:"learner_id"`
	CourseID           uint           `gorm:"not null;uniqueIndex:idx_certificates_learner_course" json:"course_id"`
	CertificateNumber  string         `gorm:"size:64;uniqueIndex;not null" json:"certificate_number"`
	VerificationCode   string         `gorm:"size:64;uniqueIndex;not null" json:"verification_code"`
	QualifyingSnapshot datatypes.JSON `json:"qualifying_snapshot"`
	IssuedAt           time.Time      `gorm:"not null" json:"issued_at"`
	CreatedAt          time.Time      `json:"created_at"`
}

// CertificateSnapshot is the JSON payload stored in QualifyingSnapshot. Fields
// are pointers so that only the values relevant to the course's policy kind are
// serialized.
type CertificateSnapshot struct {
	PolicyKind     string   `json:"policy_kind"`
	PassThreshold  float64  `json:"pass_threshold"`
	Percentage     *int     `json:"percentage,omitempty"`
	FinalGrade     *float64 `json:"final_grade,omitempty"`
	AttendanceRate *float64 `json:"attendance_rate,omitempty"`
	PresentCount   *int     `json:"present_count,omitempty"`
	TotalSessions  *int     `json:"total_sessions,omitempty"`
}
