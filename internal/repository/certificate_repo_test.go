package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
)

func openRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Learner{},
		&models.Course{},
		&models.CourseModule{},
		&models.Enrollment{},
		&models.Certificate{},
	))

	return db
}

func seedCertificateFixture(t *testing.T, db *gorm.DB) models.Enrollment {
	t.Helper()

	learner := models.Learner{Name: "Ayu Lestari", Email: "ayu.certrepo@example.com"}
	require.NoError(t, db.Create(&learner).Error)

	course := models.Course{
		Title:         "Go Fundamentals",
		PolicyKind:    models.PolicyModulePercentage,
		PassThreshold: 100,
	}
	require.NoError(t, db.Create(&course).Error)

	enrollment := models.Enrollment{LearnerID: learner.ID, CourseID: course.ID}
	require.NoError(t, db.Create(&enrollment).Error)

	return enrollment
}

func TestCertificateUniquePerLearnerAndCourse(t *testing.T) {
	db := openRepoDB(t)
	repo := NewCertificateRepository(db)
	ctx := context.Background()

	enrollment := seedCertificateFixture(t, db)

	first := models.Certificate{
		EnrollmentID:      enrollment.ID,
		LearnerID:         enrollment.LearnerID,
		CourseID:          enrollment.CourseID,
		CertificateNumber: "CRD-2026-AAAA0001",
		VerificationCode:  "code-one",
		IssuedAt:          time.Now(),
	}
	require.NoError(t, repo.Create(ctx, &first))

	// A concurrent issuer losing the race gets a translated duplicate-key
	// error it can recover from by re-reading.
	second := models.Certificate{
		EnrollmentID:      enrollment.ID,
		LearnerID:         enrollment.LearnerID,
		CourseID:          enrollment.CourseID,
		CertificateNumber: "CRD-2026-AAAA0002",
		VerificationCode:  "code-two",
		IssuedAt:          time.Now(),
	}
	err := repo.Create(ctx, &second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	winner, err := repo.GetByLearnerAndCourse(ctx, enrollment.LearnerID, enrollment.CourseID)
	require.NoError(t, err)
	require.Equal(t, first.CertificateNumber, winner.CertificateNumber)
}

func TestCertificateLookupByVerificationCode(t *testing.T) {
	db := openRepoDB(t)
	repo := NewCertificateRepository(db)
	ctx := context.Background()

	enrollment := seedCertificateFixture(t, db)

	certificate := models.Certificate{
		EnrollmentID:      enrollment.ID,
		LearnerID:         enrollment.LearnerID,
		CourseID:          enrollment.CourseID,
		CertificateNumber: "CRD-2026-BBBB0001",
		VerificationCode:  "lookup-code",
		IssuedAt:          time.Now(),
	}
	require.NoError(t, repo.Create(ctx, &certificate))

	found, err := repo.GetByVerificationCode(ctx, "lookup-code")
	require.NoError(t, err)
	require.Equal(t, certificate.ID, found.ID)

	_, err = repo.GetByVerificationCode(ctx, "missing-code")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEnrollmentUniquePerLearnerAndCourse(t *testing.T) {
	db := openRepoDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	enrollment := seedCertificateFixture(t, db)

	duplicate := models.Enrollment{LearnerID: enrollment.LearnerID, CourseID: enrollment.CourseID}
	err := repo.Create(ctx, &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
