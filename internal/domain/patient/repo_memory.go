package patient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepo keeps records in process. Email uniqueness is checked inside
// Save while holding the write lock, mirroring the table's unique constraint.
type memoryRepo struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
	order    []uuid.UUID
	now      func() time.Time
}

// NewMemoryRepo returns a repository that lives for the life of the process.
// Records are listed in insertion order.
func NewMemoryRepo() PatientRepository {
	return &memoryRepo{
		patients: make(map[uuid.UUID]*Patient),
		now:      time.Now,
	}
}

func (m *memoryRepo) FindAll(_ context.Context) ([]*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Patient, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.patients[id].clone())
	}
	return out, nil
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	return p.clone(), nil
}

func (m *memoryRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emailTaken(email, uuid.Nil), nil
}

func (m *memoryRepo) ExistsByEmailAndIDNot(_ context.Context, email string, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emailTaken(email, id), nil
}

func (m *memoryRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.patients[id]
	return ok, nil
}

func (m *memoryRepo) Save(_ context.Context, p *Patient) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTaken(p.Email, p.ID) {
		return nil, fmt.Errorf("%w: %s", ErrEmailAlreadyExists, p.Email)
	}

	saved := p.clone()
	now := m.now()
	if saved.IsNew() {
		saved.ID = uuid.New()
		saved.CreatedAt = now
		saved.UpdatedAt = now
		m.patients[saved.ID] = saved
		m.order = append(m.order, saved.ID)
		return saved.clone(), nil
	}

	existing, ok := m.patients[saved.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, saved.ID)
	}
	saved.RegisteredDate = existing.RegisteredDate
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = now
	m.patients[saved.ID] = saved
	return saved.clone(), nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.patients[id]; !ok {
		return fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	delete(m.patients, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// emailTaken must be called with the lock held. A nil exclude matches nothing.
func (m *memoryRepo) emailTaken(email string, exclude uuid.UUID) bool {
	for id, p := range m.patients {
		if p.Email == email && id != exclude {
			return true
		}
	}
	return false
}
