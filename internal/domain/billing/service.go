package billing

import (
	"context"

	"github.com/rs/zerolog"
)

// Service opens billing accounts. It is a stub: every request succeeds with
// the same active account.
type Service struct {
	logger zerolog.Logger
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger.With().Str("component", "billing").Logger()}
}

func (s *Service) CreateBillingAccount(ctx context.Context, req AccountRequest) AccountResponse {
	s.logger.Info().
		Str("patient_id", req.PatientID).
		Float64("amount", req.Amount).
		Msg("billing account requested")

	return AccountResponse{Status: StatusActive, AccountID: StubAccountID}
}
