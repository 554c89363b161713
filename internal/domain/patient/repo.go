package patient

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository is the storage contract the service depends on.
// Implementations must enforce email uniqueness at save time and report a
// violation as ErrEmailAlreadyExists; the service-level existence check is
// only a fast-path rejection.
type PatientRepository interface {
	FindAll(ctx context.Context) ([]*Patient, error)
	// FindByID returns ErrPatientNotFound when no record has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	// Save inserts the record when its ID is nil and assigns one, otherwise
	// it updates the existing row. Registered date is never rewritten.
	Save(ctx context.Context, p *Patient) (*Patient, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
