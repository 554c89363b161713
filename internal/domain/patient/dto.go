package patient

import "strings"

// CreatePatientRequest is the payload accepted by POST /patients.
// Registered date is mandatory only here.
type CreatePatientRequest struct {
	Name           string `json:"name" validate:"notblank,max=100"`
	Email          string `json:"email" validate:"notblank,email"`
	Address        string `json:"address" validate:"notblank"`
	DateOfBirth    string `json:"dateOfBirth" validate:"notblank,datetime=2006-01-02"`
	RegisteredDate string `json:"registeredDate" validate:"notblank,datetime=2006-01-02"`
}

// UpdatePatientRequest is the payload accepted by PUT /patients/:id.
// RegisteredDate is tolerated on the wire but never applied.
type UpdatePatientRequest struct {
	Name           string `json:"name" validate:"notblank,max=100"`
	Email          string `json:"email" validate:"notblank,email"`
	Address        string `json:"address" validate:"notblank"`
	DateOfBirth    string `json:"dateOfBirth" validate:"notblank,datetime=2006-01-02"`
	RegisteredDate string `json:"registeredDate,omitempty"`
}

// PatientResponse is the sanitized representation returned to callers.
type PatientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CreatePatientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Address = strings.TrimSpace(r.Address)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.RegisteredDate = strings.TrimSpace(r.RegisteredDate)
}

// Normalize trims surrounding whitespace from every field.
func (r *UpdatePatientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Address = strings.TrimSpace(r.Address)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.RegisteredDate = strings.TrimSpace(r.RegisteredDate)
}

// Validate checks the create schema and reports every violation at once.
func (r CreatePatientRequest) Validate() error {
	return validateStruct(r)
}

// Validate checks the update schema and reports every violation at once.
func (r UpdatePatientRequest) Validate() error {
	return validateStruct(r)
}
