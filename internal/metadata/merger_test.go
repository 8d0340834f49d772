package metadata

import (
	"testing"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
)

func stgResult() *EnvironmentResult {
	return &EnvironmentResult{
		Environment: config.EnvStg,
		Countries: map[string]*CountryRelation{
			"US": {
				CodeAlpha2:  "US",
				CodeAlpha3:  "USA",
				Name:        "United States",
				CallingCode: "+1",
				Currencies:  []domain.Currency{{Code: "USD", Currency: "US Dollar", Number: 840}},
				Timezones:   []string{"America/New_York"},
				States: map[string]*StateRelation{
					"CA": {Code: "CA", Name: "California", Cities: []string{"Los Angeles"}},
				},
			},
		},
		Timezones:  []string{"America/New_York", "America/Chicago"},
		Currencies: []domain.Currency{{Code: "USD", Currency: "US Dollar", Number: 840}},
	}
}

func uatResult() *EnvironmentResult {
	return &EnvironmentResult{
		Environment: config.EnvUat,
		Countries: map[string]*CountryRelation{
			"US": {
				CodeAlpha2:  "US",
				CodeAlpha3:  "USA",
				Name:        "USA Renamed",
				CallingCode: "+1999",
				Currencies: []domain.Currency{
					{Code: "USD", Currency: "US Dollar", Number: 840},
					{Code: "EUR", Currency: "Euro", Number: 978},
				},
				Timezones: []string{"America/New_York", "America/Denver"},
				States: map[string]*StateRelation{
					"CA": {Code: "CA", Name: "Kalifornia", Cities: []string{"Los Angeles", "San Francisco"}},
					"NY": {Code: "NY", Name: "New York", Cities: []string{"Albany"}},
				},
			},
			"DE": {
				CodeAlpha2: "DE",
				CodeAlpha3: "DEU",
				Name:       "Germany",
				States:     map[string]*StateRelation{},
			},
		},
		Timezones:  []string{"America/Chicago", "Europe/Berlin"},
		Currencies: []domain.Currency{{Code: "EUR", Currency: "Euro", Number: 978}},
	}
}

func TestMerge(t *testing.T) {
	unified := Merge([]*EnvironmentResult{stgResult(), uatResult()})

	if len(unified.Countries) != 2 {
		t.Fatalf("countries = %v", unified.CountryCodes())
	}

	us := unified.Countries["US"]
	// First environment to contribute a country owns its display fields.
	if us.Name != "United States" || us.CallingCode != "+1" {
		t.Errorf("identity fields overwritten: name=%q calling=%q", us.Name, us.CallingCode)
	}
	if len(us.Currencies) != 2 {
		t.Errorf("currency union = %v", us.Currencies)
	}
	if len(us.Timezones) != 2 || us.Timezones[0] != "America/New_York" || us.Timezones[1] != "America/Denver" {
		t.Errorf("timezone union = %v", us.Timezones)
	}

	ca := us.States["CA"]
	if ca.Name != "California" {
		t.Errorf("state name overwritten: %q", ca.Name)
	}
	if len(ca.Cities) != 2 || ca.Cities[0] != "Los Angeles" || ca.Cities[1] != "San Francisco" {
		t.Errorf("city union = %v", ca.Cities)
	}
	if ny := us.States["NY"]; ny == nil || len(ny.Cities) != 1 {
		t.Errorf("new state not merged: %+v", ny)
	}

	// Flat timezone list keeps first-seen order without duplicates.
	want := []string{"America/New_York", "America/Chicago", "Europe/Berlin"}
	if len(unified.Timezones) != len(want) {
		t.Fatalf("flat timezones = %v", unified.Timezones)
	}
	for i, tz := range want {
		if unified.Timezones[i] != tz {
			t.Errorf("flat timezones[%d] = %q, want %q", i, unified.Timezones[i], tz)
		}
	}

	if len(unified.Currencies) != 2 {
		t.Errorf("flat currencies = %v", unified.Currencies)
	}
}

func TestMerge_SkipsNilResults(t *testing.T) {
	unified := Merge([]*EnvironmentResult{nil, uatResult(), nil})

	if len(unified.Countries) != 2 {
		t.Errorf("countries = %v", unified.CountryCodes())
	}
	// With the first environment absent, the second owns the identity fields.
	if unified.Countries["US"].Name != "USA Renamed" {
		t.Errorf("name = %q", unified.Countries["US"].Name)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	stg := stgResult()
	Merge([]*EnvironmentResult{stg, uatResult()})

	if len(stg.Countries["US"].States["CA"].Cities) != 1 {
		t.Errorf("input mutated: %v", stg.Countries["US"].States["CA"].Cities)
	}
}

func TestUnified_Projections(t *testing.T) {
	unified := Merge([]*EnvironmentResult{stgResult(), uatResult()})

	options := unified.CountryOptions()
	if len(options) != 2 || options[0].Value != "DE" || options[1].Value != "US" {
		t.Errorf("country options = %v", options)
	}

	ccOptions := unified.CallingCodeOptions()
	if len(ccOptions) != 1 || ccOptions[0].Value != "+1" {
		t.Fatalf("calling code options = %v", ccOptions)
	}
	if ccOptions[0].Label != "+1 (United States)" {
		t.Errorf("calling code label = %q", ccOptions[0].Label)
	}

	currencies := unified.CurrencyOptions()
	if len(currencies) != 2 || currencies[0].Code != "EUR" || currencies[1].Code != "USD" {
		t.Errorf("currency options = %v", currencies)
	}
}
