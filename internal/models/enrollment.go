package models

import "time"

// Enrollment links a learner to a course instance. It anchors all progress,
// grade, attendance and certificate records.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LearnerID uint      `gorm:"not null;uniqueIndex:idx_enrollments_learner_course" json:"learner_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollments_learner_course" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Learner   Learner   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"learner"`
	Course    Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// Derived enrollment statuses. Certified is terminal; nothing in the engine
// ever leaves it.
const (
	EnrollmentStatusNotStarted = "not_started"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusEligible   = "eligible"
	EnrollmentStatusCertified  = "certified"
)
