package dto

import "time"

// ProgressSnapshot is the derived completion state of an enrollment. The
// percentage is recomputed from current rows on every read; only required
// modules count toward it.
type ProgressSnapshot struct {
	EnrollmentID      uint                 `json:"enrollment_id"`
	CompletedRequired int                  `json:"completed_required"`
	TotalRequired     int                  `json:"total_required"`
	Percentage        int                  `json:"percentage"`
	OptionalCompleted int                  `json:"optional_completed"`
	Modules           []ModuleProgressItem `json:"modules"`
	LastCompletedAt   *time.Time           `json:"last_completed_at"`
}

// ModuleProgressItem reports the completion state of a single module.
type ModuleProgressItem struct {
	ModuleID    uint       `json:"module_id"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	IsRequired  bool       `json:"is_required"`
	CompletedAt *time.Time `json:"completed_at"`
}
