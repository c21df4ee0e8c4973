package generate

import (
	"fmt"
	"math"

	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

// managerTiers are the seniority tiers eligible for the manager phase.
var managerTiers = []string{"management", "executive"}

// StaffAssembler builds staff records in two phases: managers first (no
// manager reference), then the remaining staff, each reporting to a record
// created before it. References are by employee id and always point backward
// in creation order, so the hierarchy is acyclic by construction.
type StaffAssembler struct {
	src   *random.Source
	store *refdata.Store
	alloc *IdentityAllocator
	bias  Bias
}

// NewStaffAssembler wires an assembler over a shared source and allocator.
func NewStaffAssembler(src *random.Source, store *refdata.Store, alloc *IdentityAllocator, bias Bias) *StaffAssembler {
	return &StaffAssembler{src: src, store: store, alloc: alloc, bias: bias}
}

// ManagerCount returns how many of count staff records are managers. At least
// one record is a manager whenever count is positive, so the reporting chain
// always terminates inside the batch.
func ManagerCount(count int, fraction float64) int {
	if count <= 0 {
		return 0
	}
	n := int(math.Round(float64(count) * fraction))
	if n < 1 {
		n = 1
	}
	if n > count {
		n = count
	}
	return n
}

// Assemble generates count staff records. The returned slice is ordered
// managers first; the orchestrator shuffles before returning to callers.
func (a *StaffAssembler) Assemble(count int) ([]models.StaffRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if count == 0 {
		return []models.StaffRecord{}, nil
	}

	managerCount := ManagerCount(count, a.store.Global.ManagerFraction)
	records := make([]models.StaffRecord, 0, count)

	// Phase one: managers. All of them have a nil manager reference.
	for i := 0; i < managerCount; i++ {
		record, err := a.build(managerTiers, nil, true)
		if err != nil {
			return nil, fmt.Errorf("failed to build manager record %d: %w", i, err)
		}
		records = append(records, record)
	}

	// Phase two: everyone else reports to any record created before it,
	// manager-phase or not, which yields a multi-level hierarchy. Seniority
	// is drawn from the department's full tier distribution, so senior
	// tiers still appear among records that have a manager.
	for i := managerCount; i < count; i++ {
		record, err := a.build(refdata.SeniorityTiers, records, false)
		if err != nil {
			return nil, fmt.Errorf("failed to build staff record %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// build assembles one staff record, drawing its manager from managerPool (nil
// manager when the pool is empty).
func (a *StaffAssembler) build(tiers []string, managerPool []models.StaffRecord, isManager bool) (models.StaffRecord, error) {
	id, err := a.alloc.NewIdentifier()
	if err != nil {
		return models.StaffRecord{}, err
	}

	identity, err := a.alloc.AllocateName()
	if err != nil {
		return models.StaffRecord{}, err
	}

	email, err := a.alloc.StaffEmail(identity, id)
	if err != nil {
		return models.StaffRecord{}, err
	}

	deptName, err := random.Pick(a.src, a.store.DepartmentNames)
	if err != nil {
		return models.StaffRecord{}, fmt.Errorf("departments: %w", err)
	}
	dept, err := a.store.Department(deptName)
	if err != nil {
		return models.StaffRecord{}, err
	}

	tierName, profile, err := a.pickTier(dept, tiers)
	if err != nil {
		return models.StaffRecord{}, err
	}

	title, err := random.Pick(a.src, profile.JobTitles)
	if err != nil {
		return models.StaffRecord{}, fmt.Errorf("job titles for %s/%s: %w", deptName, tierName, err)
	}

	salary := a.salary(profile.Salary, isManager)

	hireDate := HireDate(a.src, a.store.Global)
	dob, err := StaffDateOfBirth(a.src, a.store.Global, tierName, hireDate)
	if err != nil {
		return models.StaffRecord{}, err
	}

	ssn, err := SSN(a.src, a.store, a.bias)
	if err != nil {
		return models.StaffRecord{}, err
	}
	phone, err := Phone(a.src, a.store, a.bias)
	if err != nil {
		return models.StaffRecord{}, err
	}
	address, err := Address(a.src, a.store, a.bias)
	if err != nil {
		return models.StaffRecord{}, err
	}

	var manager *string
	if len(managerPool) > 0 {
		boss, err := random.Pick(a.src, managerPool)
		if err != nil {
			return models.StaffRecord{}, err
		}
		managerID := boss.EmployeeID
		manager = &managerID
	}

	condition, err := a.medicalCondition()
	if err != nil {
		return models.StaffRecord{}, err
	}

	return models.StaffRecord{
		EmployeeID:        id,
		Name:              identity.FullName,
		Email:             email,
		Phone:             phone,
		Address:           address,
		DateOfBirth:       dob.Format(DateLayout),
		SSN:               ssn,
		Department:        deptName,
		JobTitle:          title,
		HireDate:          hireDate.Format(DateLayout),
		Manager:           manager,
		Salary:            salary,
		BankAccountNumber: BankAccount(a.src),
		RoutingNumber:     RoutingNumber(a.src),
		MedicalCondition:  condition,
	}, nil
}

// pickTier draws a seniority tier from the subset this phase allows, weighted
// by the department's tier weights.
func (a *StaffAssembler) pickTier(dept refdata.Department, tiers []string) (string, refdata.TierProfile, error) {
	weighted := make([]random.Weighted[string], 0, len(tiers))
	for _, name := range tiers {
		profile, ok := dept.Tiers[name]
		if !ok {
			continue
		}
		weighted = append(weighted, random.Weighted[string]{Value: name, Weight: profile.Weight})
	}

	name, err := random.WeightedChoice(a.src, weighted)
	if err != nil {
		return "", refdata.TierProfile{}, fmt.Errorf("seniority tiers for %s: %w", dept.Name, err)
	}
	return name, dept.Tiers[name], nil
}

// salary draws a salary within the tier's range. Managers draw from the upper
// 80% of the range so they are rarely out-earned by their reports' tier peers.
func (a *StaffAssembler) salary(r refdata.SalaryRange, isManager bool) int {
	low := r.Min
	if isManager {
		low = r.Min + (r.Max-r.Min)/5
	}
	return a.src.IntBetween(low, r.Max)
}

func (a *StaffAssembler) medicalCondition() (*string, error) {
	has, err := a.src.BiasedBool(a.store.Global.MedicalConditionProbability)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	condition, err := random.Pick(a.src, a.store.MedicalConditions)
	if err != nil {
		return nil, fmt.Errorf("medical conditions: %w", err)
	}
	return &condition, nil
}
