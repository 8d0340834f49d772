package client

import "github.com/prohmpiriya/onboarding-console/internal/domain"

// MetadataPayload is the raw bulk metadata response of one environment.
// Array shapes follow the metadata service's wire format.
type MetadataPayload struct {
	Country            []CountryRow            `json:"country"`
	CountryCallingCode []CountryCallingCodeRow `json:"countryCallingCode"`
	CountryTimezones   []CountryTimezoneRow    `json:"countryTimezones"`
	CountryCurrency    []CountryCurrencyRow    `json:"countryCurrency"`
	Currency           []domain.Currency       `json:"currency"`
	Timezone           []TimezoneRow           `json:"timezone"`
	State              []StateRow              `json:"state"`
	City               []CityRow               `json:"city"`
}

// CountryRow is one country entry.
type CountryRow struct {
	CodeAlpha2 string `json:"code_alpha_2"`
	CodeAlpha3 string `json:"code_alpha_3"`
	Name       string `json:"name"`
}

// CountryCallingCodeRow links a country to its calling code.
type CountryCallingCodeRow struct {
	CountryCode        string `json:"countryCode"`
	CountryCallingCode string `json:"countryCallingCode"`
}

// CountryTimezoneRow links a country to one timezone name.
type CountryTimezoneRow struct {
	CountryCode  string `json:"countryCode"`
	TimeZoneName string `json:"timeZoneName"`
}

// CountryCurrencyRow links a country to one currency code.
type CountryCurrencyRow struct {
	CountryCode  string `json:"countryCode"`
	CurrencyCode string `json:"currencyCode"`
}

// TimezoneRow is one global timezone entry.
type TimezoneRow struct {
	Name string `json:"name"`
}

// StateRow is one state entry. Code is composite: "<country>-<suffix>".
type StateRow struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
}

// CityRow is one city entry. State carries the composite state code.
type CityRow struct {
	Country string `json:"country"`
	State   string `json:"state"`
	Name    string `json:"name"`
}
