package refdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FullFixture(t *testing.T) {
	store, err := Load("testdata")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"California", "New Jersey"}, store.StateNames)

	nj, err := store.State("New Jersey")
	require.NoError(t, err)
	assert.Equal(t, "NJ", nj.Abbrev)
	assert.Equal(t, []SSNRange{{Low: 135, High: 158}}, nj.SSNRanges)
	assert.Len(t, nj.AreaCodes, 6)
	// City/zip pairs expand one entry per zip.
	assert.Contains(t, nj.Cities, CityZip{City: "Newark", Zip: "07103"})
	assert.Contains(t, nj.Cities, CityZip{City: "Princeton", Zip: "08540"})

	// Nationwide pools cover every state.
	assert.Len(t, store.AllSSNRanges, 3)
	assert.Len(t, store.AllAreaCodes, 14)
	assert.Len(t, store.AllCities, 11)

	eng, err := store.Department("Engineering")
	require.NoError(t, err)
	assert.Len(t, eng.Tiers, 4)
	assert.Equal(t, 0.05, eng.Tiers["executive"].Weight)
	assert.Equal(t, SalaryRange{Min: 200000, Max: 320000}, eng.Tiers["executive"].Salary)

	assert.Equal(t, 0.1, store.Global.ManagerFraction)
	assert.Equal(t, 16, store.Global.MinWorkingAge)
	assert.Equal(t, "example-corp.com", store.Global.StaffEmailDomain)
	assert.Len(t, store.Global.IncomeBands, 3)
	assert.Len(t, store.Global.AgeBands, 4)

	assert.Len(t, store.FirstNames, 10)
	assert.Len(t, store.LastNames, 10)
	assert.Len(t, store.MedicalConditions, 4)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load("testdata/does-not-exist")
	require.Error(t, err)

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_MalformedStates(t *testing.T) {
	root := copyFixture(t)
	writeFile(t, filepath.Join(root, "reference/states.json"), `{not json`)

	_, err := Load(root)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "malformed")
}

func TestLoad_StateMissingAreaCodes(t *testing.T) {
	root := copyFixture(t)
	writeFile(t, filepath.Join(root, "reference/states.json"), `{
		"Nowhere": {
			"state_abbrev": "NW",
			"ssn_ranges": [[1, 10]],
			"area_codes": [],
			"cities": [{"city": "Town", "zip_codes": ["00001"]}]
		}
	}`)

	_, err := Load(root)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Nowhere", cfgErr.Key)
}

func TestLoad_DepartmentMissingTier(t *testing.T) {
	root := copyFixture(t)
	patchDepartments(t, root, func(doc map[string]any) {
		depts := doc["departments"].(map[string]any)
		eng := depts["Engineering"].(map[string]any)
		tiers := eng["tiers"].(map[string]any)
		delete(tiers, "executive")
	})

	_, err := Load(root)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, `missing tier "executive"`)
}

func TestLoad_IncomeBandsMustSumToOne(t *testing.T) {
	root := copyFixture(t)
	patchDepartments(t, root, func(doc map[string]any) {
		global := doc["global_config"].(map[string]any)
		bands := global["income_bands"].([]any)
		bands[len(bands)-1].(map[string]any)["probability"] = 0.15
	})

	_, err := Load(root)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "income_bands", cfgErr.Key)
}

func TestLoad_EmptyValueList(t *testing.T) {
	root := copyFixture(t)
	writeFile(t, filepath.Join(root, "sources/first_names.txt"), "\n\n")

	_, err := Load(root)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "empty")
}

func TestStore_UnknownKeysAreFatal(t *testing.T) {
	store, err := Load("testdata")
	require.NoError(t, err)

	_, err = store.State("Atlantis")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Atlantis", cfgErr.Key)

	_, err = store.Department("Alchemy")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Alchemy", cfgErr.Key)
}

// copyFixture clones testdata into a temp dir so tests can corrupt files.
func copyFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"reference", "sources"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		entries, err := os.ReadDir(filepath.Join("testdata", dir))
		require.NoError(t, err)
		for _, entry := range entries {
			raw, err := os.ReadFile(filepath.Join("testdata", dir, entry.Name()))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(root, dir, entry.Name()), raw, 0o644))
		}
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// patchDepartments round-trips departments.json through a map so tests can
// corrupt specific fields.
func patchDepartments(t *testing.T, root string, mutate func(doc map[string]any)) {
	t.Helper()

	path := filepath.Join(root, "reference/departments.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	mutate(doc)

	patched, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, patched, 0o644))
}
