package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonFieldNames(t *testing.T, v any) []string {
	t.Helper()

	var names []string
	typ := reflect.TypeOf(v)
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("json")
		require.NotEmpty(t, tag, "field %s has no json tag", typ.Field(i).Name)
		names = append(names, strings.Split(tag, ",")[0])
	}
	return names
}

func TestStaffSensitivity_Exhaustive(t *testing.T) {
	fields := jsonFieldNames(t, StaffRecord{})

	assert.Len(t, StaffSensitivity, len(fields))
	for _, field := range fields {
		_, ok := StaffSensitivity[field]
		assert.True(t, ok, "staff field %q has no sensitivity tier", field)
	}
}

func TestClientSensitivity_Exhaustive(t *testing.T) {
	fields := jsonFieldNames(t, ClientRecord{})

	assert.Len(t, ClientSensitivity, len(fields))
	for _, field := range fields {
		_, ok := ClientSensitivity[field]
		assert.True(t, ok, "client field %q has no sensitivity tier", field)
	}
}

func TestStaffRecord_ToMapKeys(t *testing.T) {
	manager := "a-manager-id"
	condition := "Asthma"
	record := StaffRecord{
		EmployeeID:       "id-1",
		Manager:          &manager,
		MedicalCondition: &condition,
	}

	m := record.ToMap()
	assert.ElementsMatch(t, jsonFieldNames(t, StaffRecord{}), mapKeys(m))
	assert.Equal(t, "a-manager-id", m["manager"])
	assert.Equal(t, "Asthma", m["medical_condition"])
}

func TestStaffRecord_ToMapNilOptionals(t *testing.T) {
	m := (&StaffRecord{EmployeeID: "id-2"}).ToMap()
	assert.Nil(t, m["manager"])
	assert.Nil(t, m["medical_condition"])
}

func TestClientRecord_ToMapKeys(t *testing.T) {
	m := (&ClientRecord{RecordID: "id-3"}).ToMap()
	assert.ElementsMatch(t, jsonFieldNames(t, ClientRecord{}), mapKeys(m))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "low", TierLow.String())
	assert.Equal(t, "medium", TierMedium.String())
	assert.Equal(t, "high", TierHigh.String())
	assert.Equal(t, "critical", TierCritical.String())
}

func TestFieldsByTier_CoversCriticalFields(t *testing.T) {
	critical := FieldsByTier(TierCritical)
	assert.Contains(t, critical, "ssn")
	assert.Contains(t, critical, "credit_card")
	assert.Contains(t, critical, "bank_account_number")
	assert.Contains(t, critical, "routing_number")
	assert.Contains(t, critical, "medical_condition")
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
