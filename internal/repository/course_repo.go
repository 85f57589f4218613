package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// CourseRepository defines data operations for courses and their modules.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetModule(ctx context.Context, moduleID uint) (models.CourseModule, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	UpdateModule(ctx context.Context, module *models.CourseModule) error
	HasCompletionEvidence(ctx context.Context, courseID uint) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Course{}).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.baseQuery(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetModule(ctx context.Context, moduleID uint) (models.CourseModule, error) {
	var module models.CourseModule
	if err := r.db.WithContext(ctx).First(&module, moduleID).Error; err != nil {
		return models.CourseModule{}, err
	}
	return module, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) UpdateModule(ctx context.Context, module *models.CourseModule) error {
	return r.db.WithContext(ctx).Save(module).Error
}

// HasCompletionEvidence reports whether any enrollment of the course has
// recorded progress, grades or attendance. Courses with evidence have their
// completion policy locked.
func (r *courseRepository) HasCompletionEvidence(ctx context.Context, courseID uint) (bool, error) {
	enrollmentIDs := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("id").Where("course_id = ?", courseID)

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ModuleProgress{}).
		Where("enrollment_id IN (?)", enrollmentIDs).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if err := r.db.WithContext(ctx).Model(&models.GradeRecord{}).
		Where("enrollment_id IN (?)", enrollmentIDs).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Where("enrollment_id IN (?)", enrollmentIDs).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
