package models

import "time"

// Policy kinds supported by the completion engine.
const (
	// PolicyModulePercentage qualifies learners by the share of required modules completed.
	PolicyModulePercentage = "module_percentage"
	// PolicyGradeAttendance qualifies learners by final grade and, optionally, attendance rate.
	PolicyGradeAttendance = "grade_attendance"
)

// Course represents a course offering together with its completion policy.
// The policy is part of course configuration and is locked once any enrollment
// has recorded completion evidence.
type Course struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	PolicyKind         string         `gorm:"size:32;not null" json:"policy_kind"`
	PassThreshold      float64        `gorm:"not null" json:"pass_threshold"`
	MinAttendanceRate  *float64       `json:"min_attendance_rate"`
	CertificateEnabled bool           `gorm:"not null;default:true" json:"certificate_enabled"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Modules            []CourseModule `json:"modules"`
}

// CourseModule is a unit of course content. Only required modules count toward
// the completion percentage.
type CourseModule struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Position    int       `gorm:"not null" json:"position"`
	IsRequired  bool      `gorm:"not null;default:true" json:"is_required"`
	MaterialURL string    `gorm:"size:512" json:"material_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidPolicyKind reports whether the kind is one the engine understands.
func ValidPolicyKind(kind string) bool {
	switch kind {
	case PolicyModulePercentage, PolicyGradeAttendance:
		return true
	default:
		return false
	}
}

// ThresholdInRange reports whether the pass threshold is valid for the policy kind.
// Percentage policies use 0-100, grade policies use the 0-10 grading scale.
func (c Course) ThresholdInRange() bool {
	switch c.PolicyKind {
	case PolicyModulePercentage:
		return c.PassThreshold >= 0 && c.PassThreshold <= 100
	case PolicyGradeAttendance:
		return c.PassThreshold >= 0 && c.PassThreshold <= 10
	default:
		return false
	}
}

// RequiredModules returns the subset of modules that count toward completion.
func (c Course) RequiredModules() []CourseModule {
	required := make([]CourseModule, 0, len(c.Modules))
	for _, module := range c.Modules {
		if module.IsRequired {
			required = append(required, module)
		}
	}
	return required
}
