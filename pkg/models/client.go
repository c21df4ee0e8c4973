package models

// ClientRecord represents one synthetic customer profile.
// Field order matches schema: record_id, name, email, phone, address, date_of_birth, ...
type ClientRecord struct {
	RecordID         string `json:"record_id" db:"record_id"`
	Name             string `json:"name" db:"name"`
	Email            string `json:"email" db:"email"`
	Phone            string `json:"phone" db:"phone"`
	Address          string `json:"address" db:"address"`
	DateOfBirth      string `json:"date_of_birth" db:"date_of_birth"` // YYYY-MM-DD
	Salary           int    `json:"salary" db:"salary"`
	MedicalCondition string `json:"medical_condition" db:"medical_condition"` // always present for clients
	SSN              string `json:"ssn" db:"ssn"`
	CreditCard       string `json:"credit_card" db:"credit_card"`
}

// ToMap flattens the record into the field-name keyed mapping consumed by the
// serialization and storage collaborators.
func (c *ClientRecord) ToMap() map[string]any {
	return map[string]any{
		"record_id":         c.RecordID,
		"name":              c.Name,
		"email":             c.Email,
		"phone":             c.Phone,
		"address":           c.Address,
		"date_of_birth":     c.DateOfBirth,
		"salary":            c.Salary,
		"medical_condition": c.MedicalCondition,
		"ssn":               c.SSN,
		"credit_card":       c.CreditCard,
	}
}

// ClientListResponse is the response for listing client records
type ClientListResponse struct {
	Items      []ClientRecord `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// ClientResponse wraps a single client record
type ClientResponse struct {
	Client ClientRecord `json:"client"`
}
