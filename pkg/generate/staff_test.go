package generate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

func TestManagerCount(t *testing.T) {
	cases := []struct {
		count    int
		fraction float64
		want     int
	}{
		{0, 0.1, 0},
		{1, 0.1, 1},
		{5, 0.1, 1},
		{10, 0.1, 1},
		{50, 0.1, 5},
		{55, 0.1, 6}, // rounds up
		{100, 0.1, 10},
		{3, 0.0, 1}, // floor of one keeps the chain rooted
		{4, 1.0, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ManagerCount(tc.count, tc.fraction), "count=%d fraction=%v", tc.count, tc.fraction)
	}
}

func newStaffAssembler(t *testing.T, seed int64) *StaffAssembler {
	t.Helper()
	store := loadStore(t)
	src := random.New(seed)
	return NewStaffAssembler(src, store, NewIdentityAllocator(src, store), Bias{})
}

func TestStaffAssembler_ManagerReferencesResolve(t *testing.T) {
	a := newStaffAssembler(t, 30)

	records, err := a.Assemble(50)
	require.NoError(t, err)
	require.Len(t, records, 50)

	managerCount := ManagerCount(50, 0.1)

	// Exactly the manager phase has nil references.
	for i, r := range records[:managerCount] {
		assert.Nil(t, r.Manager, "manager record %d has a manager reference", i)
	}

	// Every other record points backward in creation order, so references
	// always resolve and cycles are impossible.
	earlier := map[string]bool{}
	for _, r := range records[:managerCount] {
		earlier[r.EmployeeID] = true
	}
	for i, r := range records[managerCount:] {
		require.NotNil(t, r.Manager, "record %d has no manager", managerCount+i)
		assert.True(t, earlier[*r.Manager], "record %d reports to %q, which was created later", managerCount+i, *r.Manager)
		assert.NotEqual(t, r.EmployeeID, *r.Manager, "record %d is its own manager", managerCount+i)
		earlier[r.EmployeeID] = true
	}
}

func TestStaffAssembler_SalariesMatchDepartmentTier(t *testing.T) {
	store := loadStore(t)
	src := random.New(31)
	a := NewStaffAssembler(src, store, NewIdentityAllocator(src, store), Bias{})

	records, err := a.Assemble(40)
	require.NoError(t, err)

	for _, r := range records {
		dept, err := store.Department(r.Department)
		require.NoError(t, err)

		matched := false
		for _, tier := range dept.Tiers {
			for _, title := range tier.JobTitles {
				if title == r.JobTitle {
					matched = true
					assert.GreaterOrEqual(t, r.Salary, tier.Salary.Min, "%s as %s", r.Name, r.JobTitle)
					assert.LessOrEqual(t, r.Salary, tier.Salary.Max, "%s as %s", r.Name, r.JobTitle)
				}
			}
		}
		require.True(t, matched, "job title %q not in department %q", r.JobTitle, r.Department)
	}
}

func TestStaffAssembler_AgeAtHireConsistent(t *testing.T) {
	store := loadStore(t)
	src := random.New(32)
	a := NewStaffAssembler(src, store, NewIdentityAllocator(src, store), Bias{})

	records, err := a.Assemble(40)
	require.NoError(t, err)

	for _, r := range records {
		dob, err := time.Parse(DateLayout, r.DateOfBirth)
		require.NoError(t, err)
		hire, err := time.Parse(DateLayout, r.HireDate)
		require.NoError(t, err)

		age := yearsBetween(dob, hire)
		assert.GreaterOrEqual(t, age, store.Global.MinWorkingAge, "%s hired at %d", r.Name, age)

		// Widest plausible window over all configured bands.
		assert.LessOrEqual(t, age, 70, "%s hired at %d", r.Name, age)
	}
}

func TestStaffAssembler_FieldFormats(t *testing.T) {
	a := newStaffAssembler(t, 33)

	records, err := a.Assemble(25)
	require.NoError(t, err)

	ids := map[string]bool{}
	emails := map[string]bool{}
	for _, r := range records {
		assert.Regexp(t, ssnPattern, r.SSN)
		assert.Regexp(t, phonePattern, r.Phone)
		assert.Regexp(t, `^[a-z]+[0-9a-f]{8}@example-corp\.com$`, r.Email)
		assert.Regexp(t, `^[1-9]\d{15}$`, r.BankAccountNumber)
		assert.Regexp(t, `^[1-9]\d{8}$`, r.RoutingNumber)
		assert.NotEmpty(t, r.Address)

		require.False(t, ids[r.EmployeeID], "duplicate employee id %s", r.EmployeeID)
		ids[r.EmployeeID] = true
		require.False(t, emails[r.Email], "duplicate email %s", r.Email)
		emails[r.Email] = true
	}
}

func TestStaffAssembler_MedicalConditionIsOptional(t *testing.T) {
	a := newStaffAssembler(t, 34)

	records, err := a.Assemble(200)
	require.NoError(t, err)

	with := 0
	for _, r := range records {
		if r.MedicalCondition != nil {
			with++
			assert.NotEmpty(t, *r.MedicalCondition)
		}
	}
	// Probability is 0.35 in the fixture; both outcomes must occur.
	assert.Greater(t, with, 0)
	assert.Less(t, with, 200)
}

func TestStaffAssembler_CountEdges(t *testing.T) {
	a := newStaffAssembler(t, 35)

	records, err := a.Assemble(0)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = a.Assemble(-3)
	require.ErrorIs(t, err, ErrInvalidCount)

	one, err := newStaffAssembler(t, 36).Assemble(1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Nil(t, one[0].Manager)
}

func TestStaffAssembler_ManagersComeFromSeniorTiers(t *testing.T) {
	store := loadStore(t)
	src := random.New(37)
	a := NewStaffAssembler(src, store, NewIdentityAllocator(src, store), Bias{})

	records, err := a.Assemble(60)
	require.NoError(t, err)

	managerCount := ManagerCount(60, store.Global.ManagerFraction)
	managerTitles := map[string]bool{}
	for _, name := range store.DepartmentNames {
		dept := store.Departments[name]
		for _, tierName := range managerTiers {
			for _, title := range dept.Tiers[tierName].JobTitles {
				managerTitles[title] = true
			}
		}
	}

	for _, r := range records[:managerCount] {
		assert.True(t, managerTitles[r.JobTitle], "manager %s holds non-managerial title %q", r.Name, r.JobTitle)
	}
}

func TestStaffAssembler_EmployeePhaseCoversAllTiers(t *testing.T) {
	store := loadStore(t)
	src := random.New(39)
	a := NewStaffAssembler(src, store, NewIdentityAllocator(src, store), Bias{})

	records, err := a.Assemble(500)
	require.NoError(t, err)

	titleTier := map[string]string{}
	for _, name := range store.DepartmentNames {
		dept := store.Departments[name]
		for tierName, profile := range dept.Tiers {
			for _, title := range profile.JobTitles {
				titleTier[title] = tierName
			}
		}
	}

	// Records with a manager draw seniority from the full department
	// distribution, so every tier shows up in a batch this size.
	tiers := map[string]int{}
	for _, r := range records {
		if r.Manager == nil {
			continue
		}
		tierName, ok := titleTier[r.JobTitle]
		require.True(t, ok, "job title %q not in any tier", r.JobTitle)
		tiers[tierName]++
	}

	for _, tierName := range refdata.SeniorityTiers {
		assert.Greater(t, tiers[tierName], 0, "no %s records among staff with a manager", tierName)
	}

	// Junior remains the most common tier under the fixture weights.
	assert.Greater(t, tiers["junior"], tiers["executive"])
}

func countDistinctManagers(records []models.StaffRecord) int {
	seen := map[string]bool{}
	for _, r := range records {
		if r.Manager != nil {
			seen[*r.Manager] = true
		}
	}
	return len(seen)
}

func TestStaffAssembler_ReportsSpreadAcrossManagers(t *testing.T) {
	a := newStaffAssembler(t, 38)

	records, err := a.Assemble(100)
	require.NoError(t, err)

	// Uniform assignment over a growing pool makes a single manager for
	// everyone vanishingly unlikely.
	assert.Greater(t, countDistinctManagers(records), 3)
}
