package generate

import (
	"fmt"
	"time"

	"github.com/JamesPrial/pii-leak-test/pkg/models"
	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

// ClientAssembler builds customer records. Unlike staff, every client carries
// a medical condition and a credit card, and ages run over the full adult
// range rather than tier bands.
type ClientAssembler struct {
	src   *random.Source
	store *refdata.Store
	alloc *IdentityAllocator
	bias  Bias
	asOf  time.Time
}

// NewClientAssembler wires an assembler over a shared source and allocator.
// Ages are computed relative to asOf.
func NewClientAssembler(src *random.Source, store *refdata.Store, alloc *IdentityAllocator, bias Bias, asOf time.Time) *ClientAssembler {
	return &ClientAssembler{src: src, store: store, alloc: alloc, bias: bias, asOf: asOf}
}

// Assemble generates count client records.
func (a *ClientAssembler) Assemble(count int) ([]models.ClientRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	records := make([]models.ClientRecord, 0, count)
	for i := 0; i < count; i++ {
		record, err := a.build()
		if err != nil {
			return nil, fmt.Errorf("failed to build client record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *ClientAssembler) build() (models.ClientRecord, error) {
	id, err := a.alloc.NewIdentifier()
	if err != nil {
		return models.ClientRecord{}, err
	}

	identity, err := a.alloc.AllocateName()
	if err != nil {
		return models.ClientRecord{}, err
	}

	email, err := ClientEmail(a.src, a.store, identity.First, identity.Last)
	if err != nil {
		return models.ClientRecord{}, err
	}

	phone, err := Phone(a.src, a.store, a.bias)
	if err != nil {
		return models.ClientRecord{}, err
	}
	address, err := Address(a.src, a.store, a.bias)
	if err != nil {
		return models.ClientRecord{}, err
	}
	ssn, err := SSN(a.src, a.store, a.bias)
	if err != nil {
		return models.ClientRecord{}, err
	}

	dob, err := ClientDateOfBirth(a.src, a.store.Global, a.asOf)
	if err != nil {
		return models.ClientRecord{}, err
	}

	salary, err := ClientSalary(a.src, a.store.Global.IncomeBands)
	if err != nil {
		return models.ClientRecord{}, err
	}

	condition, err := random.Pick(a.src, a.store.MedicalConditions)
	if err != nil {
		return models.ClientRecord{}, fmt.Errorf("medical conditions: %w", err)
	}

	return models.ClientRecord{
		RecordID:         id,
		Name:             identity.FullName,
		Email:            email,
		Phone:            phone,
		Address:          address,
		DateOfBirth:      dob.Format(DateLayout),
		Salary:           salary,
		MedicalCondition: condition,
		SSN:              ssn,
		CreditCard:       CreditCard(a.src),
	}, nil
}
