package dto

import (
	"time"

	"github.com/credentia/credentia-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course with its
// completion policy and content modules.
type CourseCreateRequest struct {
	Title              string                `json:"title" validate:"required,min=3,max=255"`
	Description        string                `json:"description"`
	PolicyKind         string                `json:"policy_kind" validate:"required,oneof=module_percentage grade_attendance"`
	PassThreshold      float64               `json:"pass_threshold" validate:"gte=0"`
	MinAttendanceRate  *float64              `json:"min_attendance_rate" validate:"omitempty,gte=0,lte=1"`
	CertificateEnabled *bool                 `json:"certificate_enabled"`
	Modules            []ModuleCreateRequest `json:"modules" validate:"dive"`
}

// ModuleCreateRequest describes a content module within a course.
type ModuleCreateRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=255"`
	Position   int    `json:"position" validate:"gte=0"`
	IsRequired *bool  `json:"is_required"`
}

// PolicyUpdateRequest updates the completion policy of a course that has no
// recorded completion evidence yet.
type PolicyUpdateRequest struct {
	PolicyKind         string   `json:"policy_kind" validate:"required,oneof=module_percentage grade_attendance"`
	PassThreshold      float64  `json:"pass_threshold" validate:"gte=0"`
	MinAttendanceRate  *float64 `json:"min_attendance_rate" validate:"omitempty,gte=0,lte=1"`
	CertificateEnabled *bool    `json:"certificate_enabled"`
}

// CourseResponse is returned to API clients when viewing courses.
type CourseResponse struct {
	ID                 uint             `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	PolicyKind         string           `json:"policy_kind"`
	PassThreshold      float64          `json:"pass_threshold"`
	MinAttendanceRate  *float64         `json:"min_attendance_rate"`
	CertificateEnabled bool             `json:"certificate_enabled"`
	Modules            []ModuleResponse `json:"modules"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ModuleResponse serializes a course module.
type ModuleResponse struct {
	ID          uint   `json:"id"`
	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Position    int    `json:"position"`
	IsRequired  bool   `json:"is_required"`
	MaterialURL string `json:"material_url"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	modules := make([]ModuleResponse, 0, len(model.Modules))
	for _, module := range model.Modules {
		modules = append(modules, NewModuleResponse(module))
	}

	return CourseResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		PolicyKind:         model.PolicyKind,
		PassThreshold:      model.PassThreshold,
		MinAttendanceRate:  model.MinAttendanceRate,
		CertificateEnabled: model.CertificateEnabled,
		Modules:            modules,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewModuleResponse converts a CourseModule model into a DTO.
func NewModuleResponse(model models.CourseModule) ModuleResponse {
	return ModuleResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Position:    model.Position,
		IsRequired:  model.IsRequired,
		MaterialURL: model.MaterialURL,
	}
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
