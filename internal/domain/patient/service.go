package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pm/patientmgmt/internal/platform/metrics"
)

// Operation outcomes reported to metrics.
const (
	outcomeOK        = "ok"
	outcomeInvalid   = "invalid"
	outcomeDuplicate = "duplicate_email"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
)

// Service holds the patient business rules. It keeps no per-request state;
// every call is independent and concurrency safety rests on the repository.
type Service struct {
	patients PatientRepository
	logger   zerolog.Logger
	metrics  *metrics.PatientMetrics
}

func NewService(patients PatientRepository, logger zerolog.Logger) *Service {
	return &Service{patients: patients, logger: logger.With().Str("component", "patient").Logger()}
}

// SetMetrics attaches optional operation counters.
func (s *Service) SetMetrics(m *metrics.PatientMetrics) {
	s.metrics = m
}

func (s *Service) ListPatients(ctx context.Context) (_ []PatientResponse, err error) {
	defer s.observe("list", &err)

	patients, err := s.patients.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return ToResponses(patients), nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (_ *PatientResponse, err error) {
	defer s.observe("get", &err)

	p, err := s.patients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(p)
	return &resp, nil
}

// CreatePatient rejects a request whose email is already in use before any
// record is built, then persists the new record.
func (s *Service) CreatePatient(ctx context.Context, req CreatePatientRequest) (_ *PatientResponse, err error) {
	defer s.observe("create", &err)

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.patients.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, req.Email)
	}

	p, err := ToModel(req)
	if err != nil {
		return nil, err
	}

	saved, err := s.patients.Save(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Str("patient_id", saved.ID.String()).Msg("patient created")
	resp := ToResponse(saved)
	return &resp, nil
}

// UpdatePatient overwrites name, email, address and date of birth. Keeping
// the record's own email is allowed; taking another record's email is not.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req UpdatePatientRequest) (_ *PatientResponse, err error) {
	defer s.observe("update", &err)

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.patients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.patients.ExistsByEmailAndIDNot(ctx, req.Email, id)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, req.Email)
	}

	if err := ApplyUpdate(p, req); err != nil {
		return nil, err
	}

	saved, err := s.patients.Save(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}

	s.logger.Info().Str("patient_id", saved.ID.String()).Msg("patient updated")
	resp := ToResponse(saved)
	return &resp, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) (err error) {
	defer s.observe("delete", &err)

	exists, err := s.patients.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}

	if err := s.patients.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}

	s.logger.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}

func (s *Service) observe(op string, errp *error) {
	s.metrics.ObserveOperation(op, outcomeOf(*errp))
}

func outcomeOf(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &verr):
		return outcomeInvalid
	case errors.Is(err, ErrEmailAlreadyExists):
		return outcomeDuplicate
	case errors.Is(err, ErrPatientNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
