package generate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/pii-leak-test/pkg/random"
)

func newClientAssembler(t *testing.T, seed int64) *ClientAssembler {
	t.Helper()
	store := loadStore(t)
	src := random.New(seed)
	asOf := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	return NewClientAssembler(src, store, NewIdentityAllocator(src, store), Bias{}, asOf)
}

func TestClientAssembler_FieldFormats(t *testing.T) {
	a := newClientAssembler(t, 40)

	records, err := a.Assemble(30)
	require.NoError(t, err)
	require.Len(t, records, 30)

	ids := map[string]bool{}
	for _, r := range records {
		assert.Regexp(t, ssnPattern, r.SSN)
		assert.Regexp(t, phonePattern, r.Phone)
		assert.NotEmpty(t, r.Address)
		assert.NotEmpty(t, r.MedicalCondition, "clients always carry a condition")
		assert.True(t, ValidLuhn(r.CreditCard), "card %s fails Luhn", r.CreditCard)

		require.False(t, ids[r.RecordID], "duplicate record id %s", r.RecordID)
		ids[r.RecordID] = true
	}
}

func TestClientAssembler_EmailsUsePublicProviders(t *testing.T) {
	store := loadStore(t)
	src := random.New(41)
	asOf := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	a := NewClientAssembler(src, store, NewIdentityAllocator(src, store), Bias{}, asOf)

	records, err := a.Assemble(30)
	require.NoError(t, err)

	for _, r := range records {
		at := strings.LastIndex(r.Email, "@")
		require.Greater(t, at, 0, "malformed email %q", r.Email)
		domain := r.Email[at+1:]
		assert.Contains(t, store.Global.PublicEmailDomains, domain)
		assert.NotEqual(t, store.Global.StaffEmailDomain, domain)
	}
}

func TestClientAssembler_SalariesWithinBands(t *testing.T) {
	store := loadStore(t)
	src := random.New(42)
	asOf := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	a := NewClientAssembler(src, store, NewIdentityAllocator(src, store), Bias{}, asOf)

	records, err := a.Assemble(50)
	require.NoError(t, err)

	for _, r := range records {
		within := false
		for _, band := range store.Global.IncomeBands {
			if r.Salary >= band.Min && r.Salary <= band.Max {
				within = true
				break
			}
		}
		assert.True(t, within, "salary %d outside all income bands", r.Salary)
	}
}

func TestClientAssembler_AdultAgesOnly(t *testing.T) {
	store := loadStore(t)
	src := random.New(43)
	asOf := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	a := NewClientAssembler(src, store, NewIdentityAllocator(src, store), Bias{}, asOf)

	records, err := a.Assemble(100)
	require.NoError(t, err)

	for _, r := range records {
		dob, err := time.Parse(DateLayout, r.DateOfBirth)
		require.NoError(t, err)

		age := yearsBetween(dob, asOf)
		assert.GreaterOrEqual(t, age, store.Global.ClientMinAge)
		assert.LessOrEqual(t, age, store.Global.ClientMaxAge)
	}
}

func TestClientAssembler_CountEdges(t *testing.T) {
	a := newClientAssembler(t, 44)

	records, err := a.Assemble(0)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = a.Assemble(-1)
	require.ErrorIs(t, err, ErrInvalidCount)
}
