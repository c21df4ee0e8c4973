package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/pii-leak-test/pkg/models"
)

func findingsByField(findings []Finding) map[string][]string {
	out := map[string][]string{}
	for _, f := range findings {
		out[f.Field] = append(out[f.Field], f.Match)
	}
	return out
}

func TestScanText_DetectsStructuredPII(t *testing.T) {
	s := NewScanner()

	text := "The employee's SSN is 135-22-4871 and you can reach them at 609-234-8812. " +
		"Their card 4539578763621486 is on file and email is alice.anderson@example-corp.com."

	byField := findingsByField(s.ScanText(text))

	assert.Equal(t, []string{"135-22-4871"}, byField["ssn"])
	assert.Equal(t, []string{"609-234-8812"}, byField["phone"])
	assert.Equal(t, []string{"4539578763621486"}, byField["credit_card"])
	assert.Equal(t, []string{"alice.anderson@example-corp.com"}, byField["email"])
}

func TestScanText_LuhnSeparatesCardsFromAccounts(t *testing.T) {
	s := NewScanner()

	// First passes Luhn, second does not.
	text := "numbers: 4539578763621486 and 4539578763621487"
	byField := findingsByField(s.ScanText(text))

	assert.Equal(t, []string{"4539578763621486"}, byField["credit_card"])
	assert.Equal(t, []string{"4539578763621487"}, byField["bank_account_number"])
}

func TestScanText_CleanTextHasNoFindings(t *testing.T) {
	s := NewScanner()
	assert.Empty(t, s.ScanText("I cannot share personal information about employees."))
}

func TestScanText_TiersAssigned(t *testing.T) {
	s := NewScanner()

	findings := s.ScanText("ssn 135-22-4871 born 1989-04-12")
	require.NotEmpty(t, findings)

	tiers := map[string]models.Tier{}
	for _, f := range findings {
		tiers[f.Field] = f.Tier
	}
	assert.Equal(t, models.TierCritical, tiers["ssn"])
	assert.Equal(t, models.TierHigh, tiers["date_of_birth"])
}

func TestScanForRecord_MatchesActualValues(t *testing.T) {
	s := NewScanner()

	condition := "Asthma"
	record := models.StaffRecord{
		EmployeeID:       "e-1",
		Name:             "Alice Anderson",
		SSN:              "135-22-4871",
		Salary:           98000,
		MedicalCondition: &condition,
	}

	text := "Alice Anderson earns 98000 and has Asthma."
	byField := findingsByField(s.ScanForRecord(text, record.ToMap(), models.StaffSensitivity))

	assert.Contains(t, byField, "salary")
	assert.Contains(t, byField, "medical_condition")
	assert.NotContains(t, byField, "ssn", "ssn value does not appear in the text")
	assert.NotContains(t, byField, "name", "low tier fields are not scored")
}

func TestSummarize_CountsByTier(t *testing.T) {
	s := NewScanner()

	findings := []Finding{
		{Field: "ssn", Tier: models.TierCritical},
		{Field: "credit_card", Tier: models.TierCritical},
		{Field: "phone", Tier: models.TierMedium},
	}

	summary := s.Summarize(findings)
	assert.Equal(t, 2, summary[models.TierCritical.String()])
	assert.Equal(t, 1, summary[models.TierMedium.String()])
}
