package metadata

import (
	"sort"
	"strings"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
)

// StateRelation is one state inside a country relation. Cities keep
// first-seen order and contain no duplicates.
type StateRelation struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// CountryRelation is the relational tree of one country: identity fields
// plus its currencies, timezones and states keyed by state code suffix.
type CountryRelation struct {
	CodeAlpha2  string                    `json:"code_alpha_2"`
	CodeAlpha3  string                    `json:"code_alpha_3"`
	Name        string                    `json:"name"`
	CallingCode string                    `json:"countryCallingCode"`
	Currencies  []domain.Currency         `json:"currencies"`
	Timezones   []string                  `json:"timezones"`
	States      map[string]*StateRelation `json:"states"`
}

// EnvironmentResult is the reshaped metadata of a single environment.
type EnvironmentResult struct {
	Environment config.Environment
	Countries   map[string]*CountryRelation
	Timezones   []string
	Currencies  []domain.Currency
}

// Unified is the merged cross-environment view: country relations plus the
// flat deduplicated option lists that back the form autocompletes.
type Unified struct {
	Countries  map[string]*CountryRelation
	Timezones  []string
	Currencies map[string]domain.Currency
}

// Option is one autocomplete entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AddCity appends a trimmed city name unless the state already has it.
func (s *StateRelation) AddCity(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, existing := range s.Cities {
		if existing == name {
			return
		}
	}
	s.Cities = append(s.Cities, name)
}

// clone deep-copies the relation.
func (c *CountryRelation) clone() *CountryRelation {
	states := make(map[string]*StateRelation, len(c.States))
	for code, st := range c.States {
		states[code] = &StateRelation{
			Code:   st.Code,
			Name:   st.Name,
			Cities: append([]string(nil), st.Cities...),
		}
	}
	return &CountryRelation{
		CodeAlpha2:  c.CodeAlpha2,
		CodeAlpha3:  c.CodeAlpha3,
		Name:        c.Name,
		CallingCode: c.CallingCode,
		Currencies:  append([]domain.Currency(nil), c.Currencies...),
		Timezones:   append([]string(nil), c.Timezones...),
		States:      states,
	}
}

// CountryCodes returns the unified country codes in sorted order.
func (u *Unified) CountryCodes() []string {
	codes := make([]string, 0, len(u.Countries))
	for code := range u.Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CountryOptions projects the unified countries into select options.
func (u *Unified) CountryOptions() []Option {
	options := make([]Option, 0, len(u.Countries))
	for _, code := range u.CountryCodes() {
		options = append(options, Option{Value: code, Label: u.Countries[code].Name})
	}
	return options
}

// CallingCodeOptions groups countries sharing a calling code into one
// option whose label lists every country name behind that code.
func (u *Unified) CallingCodeOptions() []Option {
	names := make(map[string][]string)
	for _, code := range u.CountryCodes() {
		country := u.Countries[code]
		if country.CallingCode == "" {
			continue
		}
		names[country.CallingCode] = append(names[country.CallingCode], country.Name)
	}

	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	options := make([]Option, 0, len(codes))
	for _, code := range codes {
		options = append(options, Option{
			Value: code,
			Label: code + " (" + strings.Join(names[code], ", ") + ")",
		})
	}
	return options
}

// TimezoneOptions returns the flat timezone list.
func (u *Unified) TimezoneOptions() []string {
	return append([]string(nil), u.Timezones...)
}

// CurrencyOptions returns the flat currency list sorted by code.
func (u *Unified) CurrencyOptions() []domain.Currency {
	codes := make([]string, 0, len(u.Currencies))
	for code := range u.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	currencies := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, u.Currencies[code])
	}
	return currencies
}
