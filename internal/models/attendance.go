package models

import "time"

// AttendanceStatus represents the status for a single session attendance record.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord captures one session attendance entry for an enrollment.
// A session is attended once: (enrollment, date, title) is unique.
type AttendanceRecord struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	EnrollmentID uint             `gorm:"not null;uniqueIndex:idx_attendance_enrollment_session" json:"enrollment_id"`
	SessionDate  time.Time        `gorm:"not null;uniqueIndex:idx_attendance_enrollment_session" json:"session_date"`
	SessionTitle string           `gorm:"size:255;not null;uniqueIndex:idx_attendance_enrollment_session" json:"session_title"`
	Status       AttendanceStatus `gorm:"size:16;not null" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}
