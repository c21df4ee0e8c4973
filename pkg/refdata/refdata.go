// Package refdata loads and indexes the static reference tables the record
// generators draw from: state geography, department job/salary tables, and
// plain value lists. Everything is loaded once per process and read-only after.
package refdata

import "fmt"

// SeniorityTiers enumerates the seniority tiers in ascending order. Tier keys
// in departments.json must cover exactly this set.
var SeniorityTiers = []string{"junior", "senior", "management", "executive"}

// ConfigurationError reports missing or malformed reference data. It is always
// fatal; downstream generators assume total coverage of the tables.
type ConfigurationError struct {
	Path   string // file the problem was found in, if any
	Key    string // lookup key that failed, if any
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "reference data error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SSNRange is an inclusive range of historical SSN area numbers.
type SSNRange struct {
	Low  int
	High int
}

// CityZip is a city paired with one of its zip codes. The pair is always
// co-selected so generated addresses never mix a city with another city's zip.
type CityZip struct {
	City string
	Zip  string
}

// State holds the geographic reference data for one state.
type State struct {
	Name      string
	Abbrev    string
	SSNRanges []SSNRange
	AreaCodes []string
	Cities    []CityZip
}

// SalaryRange is an inclusive annual salary range in whole dollars.
type SalaryRange struct {
	Min int
	Max int
}

// TierProfile describes one seniority tier within a department.
type TierProfile struct {
	JobTitles []string
	Salary    SalaryRange
	Weight    float64 // selection weight within the department
}

// Department holds the per-tier job and salary tables for one department.
type Department struct {
	Name  string
	Tiers map[string]TierProfile // keyed by seniority tier
}

// AgeBand bounds age-at-hire for a seniority tier.
type AgeBand struct {
	Min      int
	Max      int
	Variance int
}

// IncomeBand is one client income tier with its selection probability.
type IncomeBand struct {
	Min         int
	Max         int
	Probability float64
}

// GlobalConfig carries the distribution parameters shared by all generators.
type GlobalConfig struct {
	MiddleInitialProbability    float64
	SuffixProbability           float64
	MedicalConditionProbability float64 // probability a staff record carries a condition
	ApartmentProbability        float64

	HireStartYear  int
	HireEndYear    int
	RecentHireBias float64

	AgeBands        map[string]AgeBand // keyed by seniority tier
	ManagerFraction float64
	MinWorkingAge   int

	StaffEmailDomain   string
	PublicEmailDomains []string

	ClientMinAge         int
	ClientMaxAge         int
	ClientCoreMinAge     int
	ClientCoreMaxAge     int
	ClientCoreAgeWeight  float64 // probability the draw lands in the core band
	IncomeBands          []IncomeBand
}

// Store is the immutable, fully indexed reference data set for one process.
type Store struct {
	States     map[string]State
	StateNames []string // sorted, for deterministic uniform draws

	// Nationwide pools, derived once at load.
	AllSSNRanges []SSNRange
	AllAreaCodes []string
	AllCities    []CityZip

	Departments     map[string]Department
	DepartmentNames []string // sorted

	Global GlobalConfig

	FirstNames        []string
	LastNames         []string
	MiddleInitials    []string
	Suffixes          []string
	Streets           []string
	MedicalConditions []string
}

// State returns the reference data for a state. An absent key is a
// ConfigurationError, never silently defaulted.
func (s *Store) State(name string) (State, error) {
	state, ok := s.States[name]
	if !ok {
		return State{}, &ConfigurationError{Key: name, Reason: "state not found in geography table"}
	}
	return state, nil
}

// Department returns the reference data for a department. An absent key is a
// ConfigurationError.
func (s *Store) Department(name string) (Department, error) {
	dept, ok := s.Departments[name]
	if !ok {
		return Department{}, &ConfigurationError{Key: name, Reason: "department not found in department table"}
	}
	return dept, nil
}
