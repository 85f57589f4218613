package models

import "time"

// ModuleProgress marks a single module as completed for an enrollment. A row
// exists only once the module has been completed; completion is never reversed
// by the engine.
type ModuleProgress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex:idx_module_progress_enrollment_module" json:"enrollment_id"`
	ModuleID     uint      `gorm:"not null;uniqueIndex:idx_module_progress_enrollment_module" json:"module_id"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt    time.Time `json:"created_at"`
}
