package dto

import (
	"time"

	"github.com/credentia/credentia-api/internal/models"
)

// EnrollmentCreateRequest enrolls a learner into a course.
type EnrollmentCreateRequest struct {
	LearnerID uint `json:"learner_id" validate:"required,gt=0"`
	CourseID  uint `json:"course_id" validate:"required,gt=0"`
}

// EnrollmentResponse is returned to API clients when viewing enrollments.
type EnrollmentResponse struct {
	ID         uint        `json:"id"`
	LearnerID  uint        `json:"learner_id"`
	CourseID   uint        `json:"course_id"`
	Status     string      `json:"status"`
	EnrolledAt time.Time   `json:"enrolled_at"`
	Learner    LearnerLite `json:"learner"`
	Course     CourseLite  `json:"course"`
}

// LearnerLite summarizes a learner without exposing full profile data.
type LearnerLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseLite summarizes a course in enrollment responses.
type CourseLite struct {
	ID                 uint    `json:"id"`
	Title              string  `json:"title"`
	PolicyKind         string  `json:"policy_kind"`
	PassThreshold      float64 `json:"pass_threshold"`
	CertificateEnabled bool    `json:"certificate_enabled"`
}

// NewEnrollmentResponse converts an Enrollment model into a DTO. Status is
// derived by the caller and attached separately.
func NewEnrollmentResponse(model models.Enrollment, status string) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:         model.ID,
		LearnerID:  model.LearnerID,
		CourseID:   model.CourseID,
		Status:     status,
		EnrolledAt: model.CreatedAt,
	}

	if model.Learner.ID != 0 {
		response.Learner = LearnerLite{
			ID:    model.Learner.ID,
			Name:  model.Learner.Name,
			Email: model.Learner.Email,
		}
	}

	if model.Course.ID != 0 {
		response.Course = CourseLite{
			ID:                 model.Course.ID,
			Title:              model.Course.Title,
			PolicyKind:         model.Course.PolicyKind,
			PassThreshold:      model.Course.PassThreshold,
			CertificateEnabled: model.Course.CertificateEnabled,
		}
	}

	return response
}
