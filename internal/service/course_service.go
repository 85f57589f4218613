package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrInvalidPolicy indicates a policy kind/threshold combination the engine
	// does not accept.
	ErrInvalidPolicy = errors.New("invalid completion policy")
	// ErrPolicyLocked indicates the course already has completion evidence and
	// its policy can no longer change.
	ErrPolicyLocked = errors.New("completion policy is locked")
)

// CourseService manages the course catalog and its completion policies.
type CourseService interface {
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	GetByID(ctx context.Context, id uint) (dto.CourseResponse, error)
	UpdatePolicy(ctx context.Context, id uint, payload dto.PolicyUpdateRequest) (dto.CourseResponse, error)
	AttachMaterial(ctx context.Context, moduleID uint, materialURL string) (dto.ModuleResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:              strings.TrimSpace(payload.Title),
		Description:        strings.TrimSpace(payload.Description),
		PolicyKind:         payload.PolicyKind,
		PassThreshold:      payload.PassThreshold,
		MinAttendanceRate:  payload.MinAttendanceRate,
		CertificateEnabled: true,
	}
	if payload.CertificateEnabled != nil {
		course.CertificateEnabled = *payload.CertificateEnabled
	}
	if !models.ValidPolicyKind(course.PolicyKind) || !course.ThresholdInRange() {
		return dto.CourseResponse{}, ErrInvalidPolicy
	}

	for index, module := range payload.Modules {
		position := module.Position
		if position == 0 {
			position = index + 1
		}
		isRequired := true
		if module.IsRequired != nil {
			isRequired = *module.IsRequired
		}
		course.Modules = append(course.Modules, models.CourseModule{
			Title:      strings.TrimSpace(module.Title),
			Position:   position,
			IsRequired: isRequired,
		})
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().
		Uint("course_id", course.ID).
		Str("policy_kind", course.PolicyKind).
		Int("modules", len(course.Modules)).
		Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) UpdatePolicy(ctx context.Context, id uint, payload dto.PolicyUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	// Completion evidence locks the policy. Retroactive rule changes would
	// silently reinterpret evidence learners accumulated under the old rules.
	locked, err := s.courses.HasCompletionEvidence(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if locked {
		return dto.CourseResponse{}, ErrPolicyLocked
	}

	course.PolicyKind = payload.PolicyKind
	course.PassThreshold = payload.PassThreshold
	course.MinAttendanceRate = payload.MinAttendanceRate
	if payload.CertificateEnabled != nil {
		course.CertificateEnabled = *payload.CertificateEnabled
	}
	if !models.ValidPolicyKind(course.PolicyKind) || !course.ThresholdInRange() {
		return dto.CourseResponse{}, ErrInvalidPolicy
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().
		Uint("course_id", course.ID).
		Str("policy_kind", course.PolicyKind).
		Msg("completion policy updated")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) AttachMaterial(ctx context.Context, moduleID uint, materialURL string) (dto.ModuleResponse, error) {
	module, err := s.courses.GetModule(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModuleResponse{}, ErrModuleNotFound
		}
		return dto.ModuleResponse{}, err
	}

	module.MaterialURL = materialURL
	if err := s.courses.UpdateModule(ctx, &module); err != nil {
		return dto.ModuleResponse{}, err
	}

	return dto.NewModuleResponse(module), nil
}
