package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pm/patientmgmt/internal/platform/db"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type patientRepoPG struct {
	db db.Querier
}

// NewPatientRepo returns a Postgres-backed repository. It accepts a pool or
// anything else that speaks the pgx query API, such as a transaction.
func NewPatientRepo(q db.Querier) PatientRepository {
	return &patientRepoPG{db: q}
}

const patientCols = `id, name, email, address, date_of_birth, registered_date, created_at, updated_at`

func (r *patientRepoPG) FindAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("patient find all: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patient find all: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient find all: %w", err)
	}
	return patients, nil
}

func (r *patientRepoPG) FindByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.db.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("patient find by id: %w", err)
	}
	return p, nil
}

func (r *patientRepoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM patient WHERE email = $1)`, email)
}

func (r *patientRepoPG) ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM patient WHERE email = $1 AND id <> $2)`, email, id)
}

func (r *patientRepoPG) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM patient WHERE id = $1)`, id)
}

func (r *patientRepoPG) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("patient exists: %w", err)
	}
	return found, nil
}

func (r *patientRepoPG) Save(ctx context.Context, p *Patient) (*Patient, error) {
	if p.IsNew() {
		return r.insert(ctx, p)
	}
	return r.update(ctx, p)
}

func (r *patientRepoPG) insert(ctx context.Context, p *Patient) (*Patient, error) {
	saved := p.clone()
	saved.ID = uuid.New()

	err := r.db.QueryRow(ctx, `
		INSERT INTO patient (id, name, email, address, date_of_birth, registered_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		saved.ID, saved.Name, saved.Email, saved.Address, saved.DateOfBirth, saved.RegisteredDate,
	).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, translateWriteErr("patient insert", saved.Email, err)
	}
	return saved, nil
}

func (r *patientRepoPG) update(ctx context.Context, p *Patient) (*Patient, error) {
	saved := p.clone()

	err := r.db.QueryRow(ctx, `
		UPDATE patient SET name = $2, email = $3, address = $4, date_of_birth = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING registered_date, created_at, updated_at`,
		saved.ID, saved.Name, saved.Email, saved.Address, saved.DateOfBirth,
	).Scan(&saved.RegisteredDate, &saved.CreatedAt, &saved.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, saved.ID)
	}
	if err != nil {
		return nil, translateWriteErr("patient update", saved.Email, err)
	}
	return saved, nil
}

func (r *patientRepoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patient delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return nil
}

// translateWriteErr turns the storage-level uniqueness guard into the domain error.
func translateWriteErr(op, email string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrEmailAlreadyExists, email)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Address,
		&p.DateOfBirth, &p.RegisteredDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
