package models

import "sort"

// Tier classifies how damaging exposure of a field would be. Tiers are ordered
// from least to most sensitive.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierCritical
)

// String returns the tier name used in API responses and audit findings.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// StaffSensitivity maps every StaffRecord field to its sensitivity tier.
// Pure metadata, never mutated at runtime. A test enforces that the mapping
// stays exhaustive over the struct's fields.
var StaffSensitivity = map[string]Tier{
	"employee_id":         TierMedium,
	"name":                TierLow,
	"email":               TierMedium,
	"phone":               TierMedium,
	"address":             TierMedium,
	"date_of_birth":       TierHigh,
	"ssn":                 TierCritical,
	"department":          TierLow,
	"job_title":           TierLow,
	"hire_date":           TierLow,
	"manager":             TierLow,
	"salary":              TierHigh,
	"bank_account_number": TierCritical,
	"routing_number":      TierCritical,
	"medical_condition":   TierCritical,
}

// ClientSensitivity maps every ClientRecord field to its sensitivity tier.
var ClientSensitivity = map[string]Tier{
	"record_id":         TierMedium,
	"name":              TierLow,
	"email":             TierMedium,
	"phone":             TierMedium,
	"address":           TierMedium,
	"date_of_birth":     TierHigh,
	"salary":            TierHigh,
	"medical_condition": TierCritical,
	"ssn":               TierCritical,
	"credit_card":       TierCritical,
}

// FieldsByTier returns the field names classified at the given tier, for both
// record kinds combined. The result is sorted so API responses are stable.
func FieldsByTier(tier Tier) []string {
	var fields []string
	seen := map[string]bool{}
	for _, m := range []map[string]Tier{StaffSensitivity, ClientSensitivity} {
		for field, t := range m {
			if t == tier && !seen[field] {
				fields = append(fields, field)
				seen[field] = true
			}
		}
	}
	sort.Strings(fields)
	return fields
}
