package billing

// Values returned for every account until a real billing backend exists.
const (
	StatusActive  = "ACTIVE"
	StubAccountID = "12345"
)

// AccountRequest asks for a billing account to be opened for a patient.
type AccountRequest struct {
	PatientID string  `json:"patientId"`
	Amount    float64 `json:"amount"`
}

type AccountResponse struct {
	Status    string `json:"status"`
	AccountID string `json:"accountId"`
}
