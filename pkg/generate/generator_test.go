package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

func int64Ptr(v int64) *int64 { return &v }

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"staff", "clients", "both"} {
		kind, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, Kind(valid), kind)
	}

	_, err := ParseKind("everything")
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestGenerator_ReproducibleUnderSeed(t *testing.T) {
	g := NewGenerator(loadStore(t))
	opts := Options{
		Kind:        KindBoth,
		StaffCount:  20,
		ClientCount: 15,
		BiasState:   "California",
		BiasPct:     0.6,
		Seed:        int64Ptr(777),
	}

	first, err := g.Generate(opts)
	require.NoError(t, err)
	second, err := g.Generate(opts)
	require.NoError(t, err)

	assert.Equal(t, int64(777), first.Seed)
	assert.Equal(t, first.Staff, second.Staff)
	assert.Equal(t, first.Clients, second.Clients)
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	g := NewGenerator(loadStore(t))

	first, err := g.Generate(Options{Kind: KindStaff, StaffCount: 10, Seed: int64Ptr(1)})
	require.NoError(t, err)
	second, err := g.Generate(Options{Kind: KindStaff, StaffCount: 10, Seed: int64Ptr(2)})
	require.NoError(t, err)

	assert.NotEqual(t, first.Staff, second.Staff)
}

func TestGenerator_WallClockSeedIsReported(t *testing.T) {
	g := NewGenerator(loadStore(t))

	ds, err := g.Generate(Options{Kind: KindStaff, StaffCount: 3})
	require.NoError(t, err)
	require.NotZero(t, ds.Seed)

	// The reported seed must regenerate the identical batch.
	replay, err := g.Generate(Options{Kind: KindStaff, StaffCount: 3, Seed: int64Ptr(ds.Seed)})
	require.NoError(t, err)
	assert.Equal(t, ds.Staff, replay.Staff)
}

func TestGenerator_KindSelectsTables(t *testing.T) {
	g := NewGenerator(loadStore(t))

	staffOnly, err := g.Generate(Options{Kind: KindStaff, StaffCount: 5, ClientCount: 5, Seed: int64Ptr(3)})
	require.NoError(t, err)
	assert.Len(t, staffOnly.Staff, 5)
	assert.Empty(t, staffOnly.Clients)

	clientsOnly, err := g.Generate(Options{Kind: KindClients, StaffCount: 5, ClientCount: 5, Seed: int64Ptr(3)})
	require.NoError(t, err)
	assert.Empty(t, clientsOnly.Staff)
	assert.Len(t, clientsOnly.Clients, 5)
}

func TestGenerator_ZeroCounts(t *testing.T) {
	g := NewGenerator(loadStore(t))

	ds, err := g.Generate(Options{Kind: KindBoth, Seed: int64Ptr(4)})
	require.NoError(t, err)
	assert.NotNil(t, ds.Staff)
	assert.Empty(t, ds.Staff)
	assert.NotNil(t, ds.Clients)
	assert.Empty(t, ds.Clients)
}

func TestGenerator_ValidationFailures(t *testing.T) {
	g := NewGenerator(loadStore(t))

	_, err := g.Generate(Options{Kind: KindStaff, StaffCount: -1})
	require.ErrorIs(t, err, ErrInvalidCount)

	_, err = g.Generate(Options{Kind: KindClients, ClientCount: -1})
	require.ErrorIs(t, err, ErrInvalidCount)

	_, err = g.Generate(Options{Kind: KindBoth, StaffCount: 1, BiasState: "Atlantis", BiasPct: 0.5})
	var cfgErr *refdata.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = g.Generate(Options{Kind: KindBoth, StaffCount: 1, BiasState: "California", BiasPct: 1.5})
	require.ErrorIs(t, err, random.ErrInvalidProbability)

	_, err = g.Generate(Options{Kind: "neither", StaffCount: 1})
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestGenerator_FullBiasConcentratesGeography(t *testing.T) {
	store := loadStore(t)
	g := NewGenerator(store)

	ds, err := g.Generate(Options{
		Kind:       KindStaff,
		StaffCount: 100,
		BiasState:  "California",
		BiasPct:    1.0,
		Seed:       int64Ptr(5),
	})
	require.NoError(t, err)

	caCodes := map[string]bool{}
	for _, code := range store.States["California"].AreaCodes {
		caCodes[code] = true
	}
	for _, r := range ds.Staff {
		assert.True(t, caCodes[r.Phone[:3]], "phone %s not from biased state", r.Phone)
	}
}

func TestGenerator_ShufflesManagerPhase(t *testing.T) {
	g := NewGenerator(loadStore(t))

	ds, err := g.Generate(Options{Kind: KindStaff, StaffCount: 80, Seed: int64Ptr(6)})
	require.NoError(t, err)

	// Assembly emits all manager-phase records first. After the shuffle the
	// leading positions should no longer be exclusively nil-manager records;
	// an unshuffled batch would fail this with certainty.
	managerCount := ManagerCount(80, 0.1)
	leadingManagers := 0
	for _, r := range ds.Staff[:managerCount] {
		if r.Manager == nil {
			leadingManagers++
		}
	}
	assert.Less(t, leadingManagers, managerCount)
}
