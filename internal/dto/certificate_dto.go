package dto

import (
	"encoding/json"
	"time"

	"github.com/credentia/credentia-api/internal/models"
)

// CertificateResponse is returned to API clients and third-party verifiers.
type CertificateResponse struct {
	ID                uint                       `json:"id"`
	EnrollmentID      uint                       `json:"enrollment_id"`
	LearnerID         uint                       `json:"learner_id"`
	CourseID          uint                       `json:"course_id"`
	CertificateNumber string                     `json:"certificate_number"`
	VerificationCode  string                     `json:"verification_code"`
	IssuedAt          time.Time                  `json:"issued_at"`
	Snapshot          models.CertificateSnapshot `json:"qualifying_snapshot"`
}

// NewCertificateResponse converts a Certificate model into a DTO. A snapshot
// that fails to decode is returned empty rather than failing the read.
func NewCertificateResponse(model models.Certificate) CertificateResponse {
	var snapshot models.CertificateSnapshot
	if len(model.QualifyingSnapshot) > 0 {
		_ = json.Unmarshal(model.QualifyingSnapshot, &snapshot)
	}

	return CertificateResponse{
		ID:                model.ID,
		EnrollmentID:      model.EnrollmentID,
		LearnerID:         model.LearnerID,
		CourseID:          model.CourseID,
		CertificateNumber: model.CertificateNumber,
		VerificationCode:  model.VerificationCode,
		IssuedAt:          model.IssuedAt,
		Snapshot:          snapshot,
	}
}
