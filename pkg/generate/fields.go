// Package generate builds batches of structurally valid, internally consistent
// synthetic PII records with configurable statistical bias. Every draw flows
// through an injected random.Source so a fixed seed reproduces a full batch.
package generate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/JamesPrial/pii-leak-test/pkg/random"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

// DateLayout is the wire format for all generated dates.
const DateLayout = "2006-01-02"

// Bias targets a share of geography-sensitive draws at one state's reference
// data instead of the nationwide pools.
type Bias struct {
	State string  // empty disables the bias branch entirely
	Pct   float64 // probability a geography draw uses the target state
}

// active reports whether this draw should use the target state's pools.
func (b Bias) active(src *random.Source) (bool, error) {
	if b.State == "" {
		return false, nil
	}
	return src.BiasedBool(b.Pct)
}

// SSN generates an AAA-GG-SSSS social security number. The biased branch draws
// the area number from the target state's historical ranges, otherwise from
// the union of every state's ranges.
func SSN(src *random.Source, store *refdata.Store, bias Bias) (string, error) {
	ranges := store.AllSSNRanges

	useState, err := bias.active(src)
	if err != nil {
		return "", err
	}
	if useState {
		state, err := store.State(bias.State)
		if err != nil {
			return "", err
		}
		ranges = state.SSNRanges
	}

	r, err := random.Pick(src, ranges)
	if err != nil {
		return "", fmt.Errorf("ssn area ranges: %w", err)
	}

	area := src.IntBetween(r.Low, r.High)
	group := src.IntBetween(1, 99)
	serial := src.IntBetween(1, 9999)
	return fmt.Sprintf("%03d-%02d-%04d", area, group, serial), nil
}

// Phone generates an AAA-NNN-NNNN phone number with the same bias mechanic as
// SSN, applied to area codes. The 555 exchange is never produced.
func Phone(src *random.Source, store *refdata.Store, bias Bias) (string, error) {
	codes := store.AllAreaCodes

	useState, err := bias.active(src)
	if err != nil {
		return "", err
	}
	if useState {
		state, err := store.State(bias.State)
		if err != nil {
			return "", err
		}
		codes = state.AreaCodes
	}

	areaCode, err := random.Pick(src, codes)
	if err != nil {
		return "", fmt.Errorf("area codes: %w", err)
	}

	exchange := src.IntBetween(200, 999)
	if exchange == 555 {
		if src.Float64() < 0.5 {
			exchange = src.IntBetween(200, 554)
		} else {
			exchange = src.IntBetween(556, 999)
		}
	}

	number := src.IntBetween(0, 9999)
	return fmt.Sprintf("%s-%03d-%04d", areaCode, exchange, number), nil
}

// Address generates a street address with an optional unit suffix. The city
// and zip are always co-selected from one reference pair so the combination is
// never impossible.
func Address(src *random.Source, store *refdata.Store, bias Bias) (string, error) {
	streetNum := src.IntBetween(1, 9999)
	street, err := random.Pick(src, store.Streets)
	if err != nil {
		return "", fmt.Errorf("streets: %w", err)
	}

	var state refdata.State
	useState, err := bias.active(src)
	if err != nil {
		return "", err
	}
	if useState {
		state, err = store.State(bias.State)
	} else {
		var name string
		name, err = random.Pick(src, store.StateNames)
		if err == nil {
			state, err = store.State(name)
		}
	}
	if err != nil {
		return "", err
	}

	cityZip, err := random.Pick(src, state.Cities)
	if err != nil {
		return "", fmt.Errorf("cities for %s: %w", state.Name, err)
	}

	unit, err := addressUnit(src, store.Global.ApartmentProbability)
	if err != nil {
		return "", err
	}
	if unit != "" {
		return fmt.Sprintf("%d %s, %s, %s, %s %s", streetNum, street, unit, cityZip.City, state.Abbrev, cityZip.Zip), nil
	}
	return fmt.Sprintf("%d %s, %s, %s %s", streetNum, street, cityZip.City, state.Abbrev, cityZip.Zip), nil
}

func addressUnit(src *random.Source, probability float64) (string, error) {
	hasUnit, err := src.BiasedBool(probability)
	if err != nil {
		return "", err
	}
	if !hasUnit {
		return "", nil
	}

	unitTypes := []string{"Apt", "Suite", "Unit"}
	unitType, _ := random.Pick(src, unitTypes)

	if unitType == "Suite" {
		return fmt.Sprintf("Suite %d", src.IntBetween(100, 999)), nil
	}

	// Apt/Unit numbers mix plain numbers with letter-suffixed low numbers.
	if src.Float64() < 0.5 {
		letters := []string{"A", "B", "C", "D", ""}
		letter, _ := random.Pick(src, letters)
		return fmt.Sprintf("%s %d%s", unitType, src.IntBetween(1, 20), letter), nil
	}
	return fmt.Sprintf("%s %d", unitType, src.IntBetween(1, 250)), nil
}

// ClientEmail generates {first}.{last}@{public provider} for customer records.
func ClientEmail(src *random.Source, store *refdata.Store, first, last string) (string, error) {
	domain, err := random.Pick(src, store.Global.PublicEmailDomains)
	if err != nil {
		return "", fmt.Errorf("public email domains: %w", err)
	}
	return fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), domain), nil
}

// HireDate draws a hire date within the configured year range. A positive
// recency bias skews the draw exponentially toward the recent end.
func HireDate(src *random.Source, cfg refdata.GlobalConfig) time.Time {
	start := time.Date(cfg.HireStartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(cfg.HireEndYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	totalDays := int(end.Sub(start).Hours() / 24)

	var offset int
	if cfg.RecentHireBias > 0 {
		factor := math.Pow(src.Float64(), 1/(1+cfg.RecentHireBias*3))
		offset = int(float64(totalDays) * factor)
	} else {
		offset = src.IntBetween(0, totalDays)
	}

	return start.AddDate(0, 0, offset)
}

// StaffDateOfBirth derives a birth date consistent with the hire date and
// seniority tier: age at hire lands in [tier.min - variance, tier.max + variance],
// floored at the configured legal working age regardless of tier math.
func StaffDateOfBirth(src *random.Source, cfg refdata.GlobalConfig, tier string, hireDate time.Time) (time.Time, error) {
	band, ok := cfg.AgeBands[tier]
	if !ok {
		return time.Time{}, &refdata.ConfigurationError{Key: tier, Reason: "no age band configured for seniority tier"}
	}

	low := band.Min - band.Variance
	high := band.Max + band.Variance
	if low < cfg.MinWorkingAge {
		low = cfg.MinWorkingAge
	}
	if high < low {
		high = low
	}

	ageAtHire := src.IntBetween(low, high)

	// Push the birthday a partial year earlier; completed years at hire stay
	// exactly ageAtHire because the offset is under a full year.
	dayOffset := src.IntBetween(0, 364)
	return hireDate.AddDate(-ageAtHire, 0, -dayOffset), nil
}

// ClientDateOfBirth draws an adult age between the configured bounds, with
// extra density inside the core band (by default 25-65).
func ClientDateOfBirth(src *random.Source, cfg refdata.GlobalConfig, asOf time.Time) (time.Time, error) {
	useCore, err := src.BiasedBool(cfg.ClientCoreAgeWeight)
	if err != nil {
		return time.Time{}, err
	}

	var age int
	if useCore {
		age = src.IntBetween(cfg.ClientCoreMinAge, cfg.ClientCoreMaxAge)
	} else {
		age = src.IntBetween(cfg.ClientMinAge, cfg.ClientMaxAge)
	}

	dayOffset := src.IntBetween(0, 364)
	return asOf.AddDate(-age, 0, -dayOffset), nil
}

// BankAccount generates a 16-digit account number. No checksum applies.
func BankAccount(src *random.Source) string {
	return digitString(src, 16)
}

// RoutingNumber generates a 9-digit routing number.
func RoutingNumber(src *random.Source) string {
	return digitString(src, 9)
}

// CreditCard generates a 16-digit card number with a brand prefix from
// {Visa 4, Mastercard 51-55, Discover 6011} and a valid Luhn check digit.
func CreditCard(src *random.Source) string {
	prefixes := []func() string{
		func() string { return "4" },
		func() string { return fmt.Sprintf("5%d", src.IntBetween(1, 5)) },
		func() string { return "6011" },
	}
	prefix := prefixes[src.Intn(len(prefixes))]()

	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < 15 {
		b.WriteByte(byte('0' + src.Intn(10)))
	}

	partial := b.String()
	return partial + string(byte('0'+luhnCheckDigit(partial)))
}

// ClientSalary draws an annual income from the configured disjoint bands,
// selecting a band by its probability then uniformly within it.
func ClientSalary(src *random.Source, bands []refdata.IncomeBand) (int, error) {
	weighted := make([]random.Weighted[refdata.IncomeBand], 0, len(bands))
	for _, band := range bands {
		weighted = append(weighted, random.Weighted[refdata.IncomeBand]{Value: band, Weight: band.Probability})
	}

	band, err := random.WeightedChoice(src, weighted)
	if err != nil {
		return 0, fmt.Errorf("income bands: %w", err)
	}
	return src.IntBetween(band.Min, band.Max), nil
}

// ValidLuhn reports whether a numeric string satisfies the Luhn checksum.
func ValidLuhn(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// luhnCheckDigit computes the digit that makes partial+digit pass Luhn.
func luhnCheckDigit(partial string) int {
	sum := 0
	double := true // the appended check digit occupies the undoubled slot
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// digitString builds an n-digit numeric string with a non-zero leading digit.
func digitString(src *random.Source, n int) string {
	var b strings.Builder
	b.Grow(n)
	b.WriteByte(byte('0' + src.IntBetween(1, 9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + src.Intn(10)))
	}
	return b.String()
}
