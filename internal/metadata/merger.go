package metadata

import (
	"strings"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
)

// Merge folds per-environment results into one unified view. Results are
// consumed in the given order; nil entries (failed environments) are
// skipped. The first environment to contribute a country or state owns its
// identity and display fields; later environments only add to the
// collection fields (currencies by code, timezones by value, cities by
// trimmed name).
func Merge(results []*EnvironmentResult) *Unified {
	unified := &Unified{
		Countries:  make(map[string]*CountryRelation),
		Currencies: make(map[string]domain.Currency),
	}

	seenTimezones := make(map[string]bool)
	for _, result := range results {
		if result == nil {
			continue
		}

		// Flat option lists, independent of country association.
		for _, tz := range result.Timezones {
			if !seenTimezones[tz] {
				seenTimezones[tz] = true
				unified.Timezones = append(unified.Timezones, tz)
			}
		}
		for _, cur := range result.Currencies {
			unified.Currencies[cur.Code] = cur
		}

		for code, envCountry := range result.Countries {
			existing, ok := unified.Countries[code]
			if !ok {
				unified.Countries[code] = envCountry.clone()
				continue
			}
			mergeCountry(existing, envCountry)
		}
	}

	return unified
}

func mergeCountry(existing, incoming *CountryRelation) {
	// Currencies union by code.
	for _, cur := range incoming.Currencies {
		if !hasCurrency(existing.Currencies, cur.Code) {
			existing.Currencies = append(existing.Currencies, cur)
		}
	}

	// Timezones union by exact value.
	for _, tz := range incoming.Timezones {
		if !hasString(existing.Timezones, tz) {
			existing.Timezones = append(existing.Timezones, tz)
		}
	}

	// States union by code; existing states keep their name and gain the
	// incoming cities.
	for code, incomingState := range incoming.States {
		existingState, ok := existing.States[code]
		if !ok {
			existing.States[code] = &StateRelation{
				Code:   incomingState.Code,
				Name:   incomingState.Name,
				Cities: append([]string(nil), incomingState.Cities...),
			}
			continue
		}
		for _, city := range incomingState.Cities {
			existingState.AddCity(strings.TrimSpace(city))
		}
	}
}

func hasCurrency(currencies []domain.Currency, code string) bool {
	for _, cur := range currencies {
		if cur.Code == code {
			return true
		}
	}
	return false
}

func hasString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
