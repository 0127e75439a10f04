package plate

import (
	"strings"

	"github.com/smallbiznis/carpark/internal/config"
	"go.uber.org/fx"
)

// Length bounds for the enforced jurisdiction.
const (
	basicMinLen   = 5
	basicMaxLen   = 8
	specialMinLen = 6
)

// Validator checks registration numbers against per-country shape rules.
// Only one jurisdiction is enforced; every other country code is accepted
// as-is because foreign plate formats are not this lot's problem.
type Validator struct {
	enforcedCountry string
	basicPrefixes   map[rune]struct{}
	specialPrefixes map[rune]struct{}
}

// New builds a validator from explicit rule sets. Prefix sets are given as
// strings of single-letter prefixes, e.g. "BCDEFG" / "HU".
func New(enforcedCountry, basicPrefixes, specialPrefixes string) *Validator {
	return &Validator{
		enforcedCountry: strings.ToUpper(strings.TrimSpace(enforcedCountry)),
		basicPrefixes:   runeSet(basicPrefixes),
		specialPrefixes: runeSet(specialPrefixes),
	}
}

// NewFromConfig builds the validator from application configuration.
func NewFromConfig(cfg config.Config) *Validator {
	return New(cfg.Plate.EnforcedCountry, cfg.Plate.BasicPrefixes, cfg.Plate.SpecialPrefixes)
}

// Validate reports whether the registration number is acceptable for the
// given country. Pure; never panics on malformed input.
func (v *Validator) Validate(country, registrationNo string) bool {
	if strings.ToUpper(strings.TrimSpace(country)) != v.enforcedCountry {
		return true
	}

	if registrationNo == "" {
		return false
	}

	runes := []rune(registrationNo)
	first := runes[0]

	if _, ok := v.basicPrefixes[first]; ok {
		return len(runes) >= basicMinLen && len(runes) <= basicMaxLen
	}
	if _, ok := v.specialPrefixes[first]; ok {
		return len(runes) >= specialMinLen
	}
	return false
}

func runeSet(letters string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(letters))
	for _, r := range strings.ToUpper(letters) {
		if r == ' ' || r == ',' {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// Module wires the plate validator.
var Module = fx.Module("plate",
	fx.Provide(NewFromConfig),
)
