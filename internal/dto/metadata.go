package dto

import (
	"sort"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
)

// StateView is one state of a unified country, with deterministic ordering.
type StateView struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// CountryRelationView is one unified country relation shaped for the UI.
type CountryRelationView struct {
	CodeAlpha2  string            `json:"code_alpha_2"`
	CodeAlpha3  string            `json:"code_alpha_3"`
	Name        string            `json:"name"`
	CallingCode string            `json:"countryCallingCode"`
	Currencies  []domain.Currency `json:"currencies"`
	Timezones   []string          `json:"timezones"`
	States      []StateView       `json:"states"`
}

// SnapshotResponse is the unified metadata view plus the option lists that
// back the form autocompletes.
type SnapshotResponse struct {
	Countries          []CountryRelationView `json:"countries"`
	CountryOptions     []metadata.Option     `json:"country_options"`
	CallingCodeOptions []metadata.Option     `json:"calling_code_options"`
	Timezones          []string              `json:"timezones"`
	Currencies         []domain.Currency     `json:"currencies"`
}

// NewSnapshotResponse projects the unified view into the response shape.
// Countries and states are sorted by code so the output is deterministic.
func NewSnapshotResponse(unified *metadata.Unified) *SnapshotResponse {
	resp := &SnapshotResponse{
		CountryOptions:     unified.CountryOptions(),
		CallingCodeOptions: unified.CallingCodeOptions(),
		Timezones:          unified.TimezoneOptions(),
		Currencies:         unified.CurrencyOptions(),
	}

	for _, code := range unified.CountryCodes() {
		relation := unified.Countries[code]

		stateCodes := make([]string, 0, len(relation.States))
		for stateCode := range relation.States {
			stateCodes = append(stateCodes, stateCode)
		}
		sort.Strings(stateCodes)

		states := make([]StateView, 0, len(stateCodes))
		for _, stateCode := range stateCodes {
			st := relation.States[stateCode]
			states = append(states, StateView{
				Code:   st.Code,
				Name:   st.Name,
				Cities: append([]string(nil), st.Cities...),
			})
		}

		resp.Countries = append(resp.Countries, CountryRelationView{
			CodeAlpha2:  relation.CodeAlpha2,
			CodeAlpha3:  relation.CodeAlpha3,
			Name:        relation.Name,
			CallingCode: relation.CallingCode,
			Currencies:  relation.Currencies,
			Timezones:   relation.Timezones,
			States:      states,
		})
	}

	return resp
}
