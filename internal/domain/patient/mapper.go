package patient

import (
	"time"
)

// ToResponse converts a stored record into the representation sent to callers.
// Registered date and timestamps are never exposed.
func ToResponse(p *Patient) PatientResponse {
	resp := PatientResponse{
		ID:      p.ID.String(),
		Name:    p.Name,
		Email:   p.Email,
		Address: p.Address,
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format(DateLayout)
	}
	return resp
}

// ToResponses converts records in their given order.
func ToResponses(patients []*Patient) []PatientResponse {
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, ToResponse(p))
	}
	return out
}

// ToModel builds a new, unsaved record from a create request.
func ToModel(req CreatePatientRequest) (*Patient, error) {
	p := &Patient{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, fieldError("dateOfBirth", fieldMessages["dateOfBirth.datetime"])
	}
	p.DateOfBirth = dob

	if req.RegisteredDate != "" {
		reg, err := parseDate(req.RegisteredDate)
		if err != nil {
			return nil, fieldError("registeredDate", fieldMessages["registeredDate.datetime"])
		}
		p.RegisteredDate = reg
	}
	return p, nil
}

// ApplyUpdate overwrites the mutable fields of an existing record in place.
// ID and RegisteredDate are left untouched.
func ApplyUpdate(p *Patient, req UpdatePatientRequest) error {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return fieldError("dateOfBirth", fieldMessages["dateOfBirth.datetime"])
	}
	p.Name = req.Name
	p.Email = req.Email
	p.Address = req.Address
	p.DateOfBirth = dob
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
