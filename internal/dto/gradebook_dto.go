package dto

import (
	"time"

	"github.com/credentia/credentia-api/internal/models"
)

// GradeRecordRequest records a grade for an enrollment. A nil ModuleID records
// the course-final grade; recording it again overwrites the previous value.
type GradeRecordRequest struct {
	ModuleID *uint   `json:"module_id" validate:"omitempty,gt=0"`
	Scale    float64 `json:"scale" validate:"gte=0,lte=10"`
	Feedback string  `json:"feedback" validate:"omitempty,max=2000"`
}

// AttendanceRecordRequest records a single session attendance entry.
type AttendanceRecordRequest struct {
	SessionDate  time.Time `json:"session_date" validate:"required"`
	SessionTitle string    `json:"session_title" validate:"required,min=1,max=255"`
	Status       string    `json:"status" validate:"required,oneof=present absent late excused"`
}

// GradeResponse serializes a grade record.
type GradeResponse struct {
	ID           uint      `json:"id"`
	EnrollmentID uint      `json:"enrollment_id"`
	ModuleID     *uint     `json:"module_id"`
	Scale        float64   `json:"scale"`
	Feedback     string    `json:"feedback"`
	GradedBy     *uint     `json:"graded_by"`
	GradedAt     time.Time `json:"graded_at"`
}

// AttendanceResponse serializes an attendance record.
type AttendanceResponse struct {
	ID           uint      `json:"id"`
	EnrollmentID uint      `json:"enrollment_id"`
	SessionDate  time.Time `json:"session_date"`
	SessionTitle string    `json:"session_title"`
	Status       string    `json:"status"`
}

// GradebookAggregate summarizes grade and attendance evidence for an
// enrollment, computed on demand.
type GradebookAggregate struct {
	EnrollmentID   uint           `json:"enrollment_id"`
	FinalGrade     *GradeResponse `json:"final_grade"`
	AttendanceRate float64        `json:"attendance_rate"`
	PresentCount   int            `json:"present_count"`
	LateCount      int            `json:"late_count"`
	AbsentCount    int            `json:"absent_count"`
	ExcusedCount   int            `json:"excused_count"`
	TotalSessions  int            `json:"total_sessions"`
}

// AttendanceImportResult reports the outcome of a bulk attendance import.
type AttendanceImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Sessions []string `json:"sessions"`
}

// NewGradeResponse converts a GradeRecord model into a DTO.
func NewGradeResponse(model models.GradeRecord) GradeResponse {
	return GradeResponse{
		ID:           model.ID,
		EnrollmentID: model.EnrollmentID,
		ModuleID:     model.ModuleID,
		Scale:        model.Scale,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
	}
}

// NewAttendanceResponse converts an AttendanceRecord model into a DTO.
func NewAttendanceResponse(model models.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:           model.ID,
		EnrollmentID: model.EnrollmentID,
		SessionDate:  model.SessionDate,
		SessionTitle: model.SessionTitle,
		Status:       string(model.Status),
	}
}
