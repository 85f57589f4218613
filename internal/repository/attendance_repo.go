package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// AttendanceRepository defines data operations for attendance records.
type AttendanceRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.AttendanceRecord, error)
	Exists(ctx context.Context, enrollmentID uint, sessionDate time.Time, sessionTitle string) (bool, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
	CreateBatch(ctx context.Context, records []models.AttendanceRecord) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID uint) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("session_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) Exists(ctx context.Context, enrollmentID uint, sessionDate time.Time, sessionTitle string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ?", enrollmentID).
		Where("session_date = ?", sessionDate).
		Where("session_title = ?", sessionTitle).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record *models.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepository) CreateBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}
