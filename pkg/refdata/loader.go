package refdata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	statesFile            = "reference/states.json"
	departmentsFile       = "reference/departments.json"
	firstNamesFile        = "sources/first_names.txt"
	lastNamesFile         = "sources/last_names.txt"
	middleInitialsFile    = "sources/middle_initials.txt"
	suffixesFile          = "sources/name_suffixes.txt"
	streetsFile           = "sources/streets.txt"
	medicalConditionsFile = "sources/medical_conditions.txt"
)

// probabilitySumTolerance absorbs float representation noise when checking
// that configured probabilities sum to 1.0.
const probabilitySumTolerance = 1e-9

type stateJSON struct {
	Abbrev    string     `json:"state_abbrev"`
	SSNRanges [][2]int   `json:"ssn_ranges"`
	AreaCodes []string   `json:"area_codes"`
	Cities    []cityJSON `json:"cities"`
}

type cityJSON struct {
	City     string   `json:"city"`
	ZipCodes []string `json:"zip_codes"`
}

type tierJSON struct {
	JobTitles   []string `json:"job_titles"`
	SalaryRange [2]int   `json:"salary_range"`
}

type departmentJSON struct {
	SeniorityDistribution map[string]float64  `json:"seniority_distribution"`
	Tiers                 map[string]tierJSON `json:"tiers"`
}

type ageBandJSON struct {
	Min      int `json:"min"`
	Max      int `json:"max"`
	Variance int `json:"variance"`
}

type incomeBandJSON struct {
	Min         int     `json:"min"`
	Max         int     `json:"max"`
	Probability float64 `json:"probability"`
}

type globalConfigJSON struct {
	MiddleInitialProbability    float64 `json:"middle_initial_probability"`
	SuffixProbability           float64 `json:"suffix_probability"`
	MedicalConditionProbability float64 `json:"medical_condition_probability"`
	Address                     struct {
		ApartmentProbability float64 `json:"apartment_probability"`
	} `json:"address"`
	HireDate struct {
		StartYear      int     `json:"start_year"`
		EndYear        int     `json:"end_year"`
		RecentHireBias float64 `json:"recent_hire_bias"`
	} `json:"hire_date"`
	AgeBands        map[string]ageBandJSON `json:"age_bands"`
	ManagerFraction float64                `json:"manager_fraction"`
	MinWorkingAge   int                    `json:"min_working_age"`

	StaffEmailDomain   string   `json:"staff_email_domain"`
	PublicEmailDomains []string `json:"public_email_domains"`

	ClientAge struct {
		Min        int     `json:"min"`
		Max        int     `json:"max"`
		CoreMin    int     `json:"core_min"`
		CoreMax    int     `json:"core_max"`
		CoreWeight float64 `json:"core_weight"`
	} `json:"client_age"`
	IncomeBands []incomeBandJSON `json:"income_bands"`
}

type departmentsFileJSON struct {
	GlobalConfig globalConfigJSON          `json:"global_config"`
	Departments  map[string]departmentJSON `json:"departments"`
}

// Load reads the reference data root and returns a fully indexed Store.
// Any missing file, malformed document, or incomplete table is a
// ConfigurationError; generation never starts on partial reference data.
func Load(root string) (*Store, error) {
	store := &Store{}

	if err := loadStates(root, store); err != nil {
		return nil, err
	}
	if err := loadDepartments(root, store); err != nil {
		return nil, err
	}

	lists := []struct {
		file string
		dest *[]string
	}{
		{firstNamesFile, &store.FirstNames},
		{lastNamesFile, &store.LastNames},
		{middleInitialsFile, &store.MiddleInitials},
		{suffixesFile, &store.Suffixes},
		{streetsFile, &store.Streets},
		{medicalConditionsFile, &store.MedicalConditions},
	}
	for _, l := range lists {
		values, err := loadLines(filepath.Join(root, l.file))
		if err != nil {
			return nil, err
		}
		*l.dest = values
	}

	return store, nil
}

func loadStates(root string, store *Store) error {
	path := filepath.Join(root, statesFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		return &ConfigurationError{Path: path, Reason: "cannot read state geography table", Err: err}
	}

	var file map[string]stateJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return &ConfigurationError{Path: path, Reason: "malformed state geography table", Err: err}
	}
	if len(file) == 0 {
		return &ConfigurationError{Path: path, Reason: "state geography table is empty"}
	}

	store.States = make(map[string]State, len(file))
	for name, entry := range file {
		state, err := buildState(path, name, entry)
		if err != nil {
			return err
		}
		store.States[name] = state
		store.StateNames = append(store.StateNames, name)
	}
	sort.Strings(store.StateNames)

	// Build the nationwide pools in sorted-state order; map iteration is not
	// deterministic and the pools feed seeded draws.
	for _, name := range store.StateNames {
		state := store.States[name]
		store.AllSSNRanges = append(store.AllSSNRanges, state.SSNRanges...)
		store.AllAreaCodes = append(store.AllAreaCodes, state.AreaCodes...)
		store.AllCities = append(store.AllCities, state.Cities...)
	}

	return nil
}

func buildState(path, name string, entry stateJSON) (State, error) {
	if entry.Abbrev == "" {
		return State{}, &ConfigurationError{Path: path, Key: name, Reason: "missing state_abbrev"}
	}
	if len(entry.SSNRanges) == 0 {
		return State{}, &ConfigurationError{Path: path, Key: name, Reason: "missing ssn_ranges"}
	}
	if len(entry.AreaCodes) == 0 {
		return State{}, &ConfigurationError{Path: path, Key: name, Reason: "missing area_codes"}
	}
	if len(entry.Cities) == 0 {
		return State{}, &ConfigurationError{Path: path, Key: name, Reason: "missing cities"}
	}

	state := State{Name: name, Abbrev: entry.Abbrev, AreaCodes: entry.AreaCodes}

	for _, r := range entry.SSNRanges {
		if r[0] <= 0 || r[1] < r[0] {
			return State{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("invalid ssn range [%d, %d]", r[0], r[1]),
			}
		}
		state.SSNRanges = append(state.SSNRanges, SSNRange{Low: r[0], High: r[1]})
	}

	for _, city := range entry.Cities {
		if city.City == "" || len(city.ZipCodes) == 0 {
			return State{}, &ConfigurationError{Path: path, Key: name, Reason: "city entry missing name or zip_codes"}
		}
		for _, zip := range city.ZipCodes {
			state.Cities = append(state.Cities, CityZip{City: city.City, Zip: zip})
		}
	}

	return state, nil
}

func loadDepartments(root string, store *Store) error {
	path := filepath.Join(root, departmentsFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		return &ConfigurationError{Path: path, Reason: "cannot read department table", Err: err}
	}

	var file departmentsFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return &ConfigurationError{Path: path, Reason: "malformed department table", Err: err}
	}
	if len(file.Departments) == 0 {
		return &ConfigurationError{Path: path, Reason: "department table is empty"}
	}

	store.Departments = make(map[string]Department, len(file.Departments))
	for name, entry := range file.Departments {
		dept, err := buildDepartment(path, name, entry)
		if err != nil {
			return err
		}
		store.Departments[name] = dept
		store.DepartmentNames = append(store.DepartmentNames, name)
	}
	sort.Strings(store.DepartmentNames)

	return buildGlobalConfig(path, file.GlobalConfig, store)
}

func buildDepartment(path, name string, entry departmentJSON) (Department, error) {
	dept := Department{Name: name, Tiers: make(map[string]TierProfile, len(SeniorityTiers))}

	for _, tier := range SeniorityTiers {
		profile, ok := entry.Tiers[tier]
		if !ok {
			return Department{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("missing tier %q", tier),
			}
		}
		if len(profile.JobTitles) == 0 {
			return Department{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("tier %q has no job titles", tier),
			}
		}
		if profile.SalaryRange[1] < profile.SalaryRange[0] || profile.SalaryRange[0] <= 0 {
			return Department{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("tier %q has invalid salary range [%d, %d]", tier, profile.SalaryRange[0], profile.SalaryRange[1]),
			}
		}

		weight, ok := entry.SeniorityDistribution[tier]
		if !ok {
			return Department{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("seniority_distribution missing tier %q", tier),
			}
		}
		if weight < 0 {
			return Department{}, &ConfigurationError{
				Path: path, Key: name,
				Reason: fmt.Sprintf("seniority_distribution weight for %q is negative", tier),
			}
		}

		dept.Tiers[tier] = TierProfile{
			JobTitles: profile.JobTitles,
			Salary:    SalaryRange{Min: profile.SalaryRange[0], Max: profile.SalaryRange[1]},
			Weight:    weight,
		}
	}

	return dept, nil
}

func buildGlobalConfig(path string, cfg globalConfigJSON, store *Store) error {
	probabilities := map[string]float64{
		"middle_initial_probability":    cfg.MiddleInitialProbability,
		"suffix_probability":            cfg.SuffixProbability,
		"medical_condition_probability": cfg.MedicalConditionProbability,
		"address.apartment_probability": cfg.Address.ApartmentProbability,
		"manager_fraction":              cfg.ManagerFraction,
		"client_age.core_weight":        cfg.ClientAge.CoreWeight,
	}
	for key, p := range probabilities {
		if p < 0 || p > 1 {
			return &ConfigurationError{Path: path, Key: key, Reason: fmt.Sprintf("probability %v outside [0, 1]", p)}
		}
	}

	if cfg.HireDate.StartYear <= 0 || cfg.HireDate.EndYear < cfg.HireDate.StartYear {
		return &ConfigurationError{
			Path: path, Key: "hire_date",
			Reason: fmt.Sprintf("invalid year range [%d, %d]", cfg.HireDate.StartYear, cfg.HireDate.EndYear),
		}
	}
	if cfg.MinWorkingAge <= 0 {
		return &ConfigurationError{Path: path, Key: "min_working_age", Reason: "must be positive"}
	}
	if cfg.StaffEmailDomain == "" {
		return &ConfigurationError{Path: path, Key: "staff_email_domain", Reason: "missing"}
	}
	if len(cfg.PublicEmailDomains) == 0 {
		return &ConfigurationError{Path: path, Key: "public_email_domains", Reason: "missing"}
	}

	bands := make(map[string]AgeBand, len(SeniorityTiers))
	for _, tier := range SeniorityTiers {
		band, ok := cfg.AgeBands[tier]
		if !ok {
			return &ConfigurationError{Path: path, Key: "age_bands", Reason: fmt.Sprintf("missing tier %q", tier)}
		}
		if band.Min <= 0 || band.Max < band.Min || band.Variance < 0 {
			return &ConfigurationError{
				Path: path, Key: "age_bands",
				Reason: fmt.Sprintf("invalid band for tier %q", tier),
			}
		}
		bands[tier] = AgeBand{Min: band.Min, Max: band.Max, Variance: band.Variance}
	}

	if cfg.ClientAge.Min <= 0 || cfg.ClientAge.Max < cfg.ClientAge.Min {
		return &ConfigurationError{Path: path, Key: "client_age", Reason: "invalid age range"}
	}
	if cfg.ClientAge.CoreMin < cfg.ClientAge.Min || cfg.ClientAge.CoreMax > cfg.ClientAge.Max || cfg.ClientAge.CoreMax < cfg.ClientAge.CoreMin {
		return &ConfigurationError{Path: path, Key: "client_age", Reason: "core band must sit inside the full age range"}
	}

	if len(cfg.IncomeBands) == 0 {
		return &ConfigurationError{Path: path, Key: "income_bands", Reason: "missing"}
	}
	var bandSum float64
	incomeBands := make([]IncomeBand, 0, len(cfg.IncomeBands))
	for i, band := range cfg.IncomeBands {
		if band.Min <= 0 || band.Max < band.Min {
			return &ConfigurationError{Path: path, Key: "income_bands", Reason: fmt.Sprintf("band %d has invalid range", i)}
		}
		if band.Probability <= 0 || band.Probability > 1 {
			return &ConfigurationError{Path: path, Key: "income_bands", Reason: fmt.Sprintf("band %d has invalid probability", i)}
		}
		bandSum += band.Probability
		incomeBands = append(incomeBands, IncomeBand{Min: band.Min, Max: band.Max, Probability: band.Probability})
	}
	if math.Abs(bandSum-1.0) > probabilitySumTolerance {
		return &ConfigurationError{
			Path: path, Key: "income_bands",
			Reason: fmt.Sprintf("probabilities sum to %v, must sum to 1.0", bandSum),
		}
	}

	store.Global = GlobalConfig{
		MiddleInitialProbability:    cfg.MiddleInitialProbability,
		SuffixProbability:           cfg.SuffixProbability,
		MedicalConditionProbability: cfg.MedicalConditionProbability,
		ApartmentProbability:        cfg.Address.ApartmentProbability,
		HireStartYear:               cfg.HireDate.StartYear,
		HireEndYear:                 cfg.HireDate.EndYear,
		RecentHireBias:              cfg.HireDate.RecentHireBias,
		AgeBands:                    bands,
		ManagerFraction:             cfg.ManagerFraction,
		MinWorkingAge:               cfg.MinWorkingAge,
		StaffEmailDomain:            cfg.StaffEmailDomain,
		PublicEmailDomains:          cfg.PublicEmailDomains,
		ClientMinAge:                cfg.ClientAge.Min,
		ClientMaxAge:                cfg.ClientAge.Max,
		ClientCoreMinAge:            cfg.ClientAge.CoreMin,
		ClientCoreMaxAge:            cfg.ClientAge.CoreMax,
		ClientCoreAgeWeight:         cfg.ClientAge.CoreWeight,
		IncomeBands:                 incomeBands,
	}

	return nil
}

// loadLines reads a line-delimited value list, skipping blank lines.
func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "cannot read value list", Err: err}
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "failed reading value list", Err: err}
	}
	if len(values) == 0 {
		return nil, &ConfigurationError{Path: path, Reason: "value list is empty"}
	}

	return values, nil
}
