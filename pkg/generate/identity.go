package generate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

// maxNameAttempts bounds the rejection-sampling loop for unique identities.
// Hitting the cap means the name pools are too small for the requested batch.
const maxNameAttempts = 100

// Identity is an allocated person: a unique full name split into its parts so
// email generation can reuse them.
type Identity struct {
	First    string
	Last     string
	FullName string
}

// IdentityAllocator hands out names and staff emails that are unique within a
// single generation run. One allocator is shared across the staff and client
// phases so a name never appears in both tables.
type IdentityAllocator struct {
	src        *random.Source
	store      *refdata.Store
	usedNames  map[string]struct{}
	usedEmails map[string]struct{}
}

// NewIdentityAllocator returns an allocator with empty uniqueness sets.
func NewIdentityAllocator(src *random.Source, store *refdata.Store) *IdentityAllocator {
	return &IdentityAllocator{
		src:        src,
		store:      store,
		usedNames:  make(map[string]struct{}),
		usedEmails: make(map[string]struct{}),
	}
}

// NewIdentifier returns a fresh UUID drawn from the allocator's seeded source,
// so record IDs reproduce under a fixed seed.
func (a *IdentityAllocator) NewIdentifier() (string, error) {
	id, err := uuid.NewRandomFromReader(a.src)
	if err != nil {
		return "", fmt.Errorf("failed to generate identifier: %w", err)
	}
	return id.String(), nil
}

// AllocateName draws a full name not yet used in this run. Names optionally
// carry a middle initial or a suffix; uniqueness is judged on the complete
// rendered string.
func (a *IdentityAllocator) AllocateName() (Identity, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		identity, err := a.draw()
		if err != nil {
			return Identity{}, err
		}
		if _, taken := a.usedNames[identity.FullName]; taken {
			continue
		}
		a.usedNames[identity.FullName] = struct{}{}
		return identity, nil
	}
	return Identity{}, fmt.Errorf("%w: %d attempts exhausted with %d names taken",
		ErrNamePoolExhausted, maxNameAttempts, len(a.usedNames))
}

func (a *IdentityAllocator) draw() (Identity, error) {
	first, err := random.Pick(a.src, a.store.FirstNames)
	if err != nil {
		return Identity{}, fmt.Errorf("first names: %w", err)
	}
	last, err := random.Pick(a.src, a.store.LastNames)
	if err != nil {
		return Identity{}, fmt.Errorf("last names: %w", err)
	}

	parts := []string{first}

	hasMiddle, err := a.src.BiasedBool(a.store.Global.MiddleInitialProbability)
	if err != nil {
		return Identity{}, err
	}
	if hasMiddle && len(a.store.MiddleInitials) > 0 {
		// Source entries are pre-rendered ("A.", "B."), so no punctuation
		// is added here.
		initial, _ := random.Pick(a.src, a.store.MiddleInitials)
		parts = append(parts, initial)
	}

	parts = append(parts, last)

	hasSuffix, err := a.src.BiasedBool(a.store.Global.SuffixProbability)
	if err != nil {
		return Identity{}, err
	}
	if hasSuffix && len(a.store.Suffixes) > 0 {
		suffix, _ := random.Pick(a.src, a.store.Suffixes)
		parts = append(parts, suffix)
	}

	return Identity{
		First:    first,
		Last:     last,
		FullName: strings.Join(parts, " "),
	}, nil
}

// StaffEmail builds {first}{last initial}{id prefix}@{corporate domain}. The
// suffix is the first 8 hex characters of the employee identifier, so two
// staff sharing a first name and last initial still get distinct addresses
// without a retry loop. The used-email set stays as a tripwire: a prefix
// collision within one batch is a reused identifier, which is a bug upstream.
func (a *IdentityAllocator) StaffEmail(identity Identity, employeeID string) (string, error) {
	lastInitial := strings.ToLower(identity.Last[:1])
	suffix := strings.ReplaceAll(employeeID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}

	email := fmt.Sprintf("%s%s%s@%s",
		strings.ToLower(identity.First), lastInitial, suffix, a.store.Global.StaffEmailDomain)
	if _, taken := a.usedEmails[email]; taken {
		return "", fmt.Errorf("%w: duplicate address %s", ErrEmailPoolExhausted, email)
	}
	a.usedEmails[email] = struct{}{}
	return email, nil
}
