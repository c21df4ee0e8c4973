package models

// StaffRecord represents one synthetic employee profile.
// Field order matches schema: employee_id, name, email, phone, address, date_of_birth, ssn, ...
type StaffRecord struct {
	EmployeeID        string  `json:"employee_id" db:"employee_id"`
	Name              string  `json:"name" db:"name"`
	Email             string  `json:"email" db:"email"`
	Phone             string  `json:"phone" db:"phone"`
	Address           string  `json:"address" db:"address"`
	DateOfBirth       string  `json:"date_of_birth" db:"date_of_birth"` // YYYY-MM-DD
	SSN               string  `json:"ssn" db:"ssn"`
	Department        string  `json:"department" db:"department"`
	JobTitle          string  `json:"job_title" db:"job_title"`
	HireDate          string  `json:"hire_date" db:"hire_date"` // YYYY-MM-DD
	Manager           *string `json:"manager" db:"manager"`     // employee_id of a record created earlier in the batch, nil for manager-phase records
	Salary            int     `json:"salary" db:"salary"`
	BankAccountNumber string  `json:"bank_account_number" db:"bank_account_number"`
	RoutingNumber     string  `json:"routing_number" db:"routing_number"`
	MedicalCondition  *string `json:"medical_condition" db:"medical_condition"`
}

// ToMap flattens the record into the field-name keyed mapping consumed by the
// serialization and storage collaborators.
func (s *StaffRecord) ToMap() map[string]any {
	var manager any
	if s.Manager != nil {
		manager = *s.Manager
	}
	var condition any
	if s.MedicalCondition != nil {
		condition = *s.MedicalCondition
	}

	return map[string]any{
		"employee_id":         s.EmployeeID,
		"name":                s.Name,
		"email":               s.Email,
		"phone":               s.Phone,
		"address":             s.Address,
		"date_of_birth":       s.DateOfBirth,
		"ssn":                 s.SSN,
		"department":          s.Department,
		"job_title":           s.JobTitle,
		"hire_date":           s.HireDate,
		"manager":             manager,
		"salary":              s.Salary,
		"bank_account_number": s.BankAccountNumber,
		"routing_number":      s.RoutingNumber,
		"medical_condition":   condition,
	}
}

// StaffListResponse is the response for listing staff records
type StaffListResponse struct {
	Items      []StaffRecord `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}

// StaffResponse wraps a single staff record
type StaffResponse struct {
	Staff StaffRecord `json:"staff"`
}
