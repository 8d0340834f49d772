package domain

import (
	"fmt"
	"regexp"
)

// Patterns shared between domain validation and the request binding layer.
var (
	Alpha2Pattern      = regexp.MustCompile(`^[A-Z]{2}$`)
	Alpha3Pattern      = regexp.MustCompile(`^[A-Z]{3}$`)
	CallingCodePattern = regexp.MustCompile(`^\+\d{1,5}$`)
	CurrencyPattern    = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Currency is one ISO currency entry. The code is its identity everywhere:
// currencies are deduplicated by code, never by name or number.
type Currency struct {
	Code     string `json:"code"`
	Currency string `json:"currency"`
	Number   int    `json:"number"`
}

// State belongs to exactly one country. Cities keep first-seen order and
// contain no duplicates.
type State struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// Country is one ISO country entry as submitted to the country endpoint.
// The alpha-2 code is the primary identity across all environments.
type Country struct {
	Name               string     `json:"name"`
	CodeAlpha2         string     `json:"code_alpha_2"`
	CodeAlpha3         string     `json:"code_alpha_3"`
	CallingCode        string     `json:"countryCallingCode"`
	Currencies         []Currency `json:"currencies"`
	Timezones          []string   `json:"timezones"`
	States             []State    `json:"states,omitempty"`
}

// Validate checks the country payload and returns every problem found as a
// human-readable message. An empty slice means the payload is valid.
// requireStates distinguishes add mode (states mandatory) from update mode.
func (c *Country) Validate(requireStates bool) []string {
	var errs []string

	if c.Name == "" {
		errs = append(errs, "Country name is required.")
	}
	if !Alpha2Pattern.MatchString(c.CodeAlpha2) {
		errs = append(errs, "Alpha-2 code must be exactly 2 uppercase letters.")
	}
	if !Alpha3Pattern.MatchString(c.CodeAlpha3) {
		errs = append(errs, "Alpha-3 code must be exactly 3 uppercase letters.")
	}
	if !CallingCodePattern.MatchString(c.CallingCode) {
		errs = append(errs, "Calling code must be '+' followed by 1-5 digits.")
	}

	if len(c.Currencies) == 0 {
		errs = append(errs, "At least one currency is required.")
	}
	seenCurrencies := make(map[string]bool, len(c.Currencies))
	for _, cur := range c.Currencies {
		if !CurrencyPattern.MatchString(cur.Code) {
			errs = append(errs, fmt.Sprintf("Currency code '%s' must be exactly 3 uppercase letters.", cur.Code))
		}
		if cur.Number < 0 || cur.Number > 999 {
			errs = append(errs, fmt.Sprintf("Currency '%s' has ISO number out of range (0-999).", cur.Code))
		}
		if seenCurrencies[cur.Code] {
			errs = append(errs, fmt.Sprintf("Duplicate currency code '%s'.", cur.Code))
		}
		seenCurrencies[cur.Code] = true
	}

	if len(c.Timezones) == 0 {
		errs = append(errs, "At least one timezone is required.")
	}
	seenTimezones := make(map[string]bool, len(c.Timezones))
	for _, tz := range c.Timezones {
		if tz == "" {
			errs = append(errs, "Timezone names must be non-empty.")
			continue
		}
		if seenTimezones[tz] {
			errs = append(errs, fmt.Sprintf("Duplicate timezone '%s'.", tz))
		}
		seenTimezones[tz] = true
	}

	if requireStates && len(c.States) == 0 {
		errs = append(errs, "At least one state is required.")
	}
	seenStates := make(map[string]bool, len(c.States))
	for _, st := range c.States {
		errs = append(errs, st.validate(seenStates)...)
	}

	return errs
}

func (s *State) validate(seenCodes map[string]bool) []string {
	var errs []string

	if len(s.Code) != 2 {
		errs = append(errs, fmt.Sprintf("State code '%s' must be exactly 2 characters.", s.Code))
	}
	if s.Name == "" {
		errs = append(errs, fmt.Sprintf("State '%s' must have a name.", s.Code))
	}
	if seenCodes[s.Code] {
		errs = append(errs, fmt.Sprintf("Duplicate state code '%s'.", s.Code))
	}
	seenCodes[s.Code] = true

	if len(s.Cities) == 0 {
		errs = append(errs, fmt.Sprintf("State '%s' must have at least one city.", s.Code))
	}
	seenCities := make(map[string]bool, len(s.Cities))
	for _, city := range s.Cities {
		if city == "" {
			errs = append(errs, fmt.Sprintf("State '%s' has an empty city name.", s.Code))
			continue
		}
		if seenCities[city] {
			errs = append(errs, fmt.Sprintf("Duplicate city '%s' found in state '%s'.", city, s.Code))
		}
		seenCities[city] = true
	}

	return errs
}
