package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

// CertificateRepository defines data operations for certificates. There is no
// update or delete: certificates are immutable once created and revocation is
// outside the engine's scope.
type CertificateRepository interface {
	GetByLearnerAndCourse(ctx context.Context, learnerID, courseID uint) (models.Certificate, error)
	GetByEnrollment(ctx context.Context, enrollmentID uint) (models.Certificate, error)
	GetByVerificationCode(ctx context.Context, code string) (models.Certificate, error)
	Create(ctx context.Context, certificate *models.Certificate) error
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository instantiates the repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID uint) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("learner_id = ?", learnerID).
		Where("course_id = ?", courseID).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}
	return certificate, nil
}

func (r *certificateRepository) GetByEnrollment(ctx context.Context, enrollmentID uint) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}
	return certificate, nil
}

func (r *certificateRepository) GetByVerificationCode(ctx context.Context, code string) (models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).
		Where("verification_code = ?", code).
		First(&certificate).Error; err != nil {
		return models.Certificate{}, err
	}
	return certificate, nil
}

// Create inserts the certificate row. Concurrent issuance for the same
// (learner, course) surfaces as gorm.ErrDuplicatedKey via the composite unique
// index; callers resolve the race by re-reading the winning row.
func (r *certificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}
