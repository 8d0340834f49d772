package metadata

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/prohmpiriya/onboarding-console/internal/client"
	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

// Fetcher retrieves and reshapes the bulk metadata of one environment.
type Fetcher struct {
	client client.EnvironmentClient
	logger *logger.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(envClient client.EnvironmentClient, log *logger.Logger) *Fetcher {
	return &Fetcher{client: envClient, logger: log}
}

// Fetch authenticates against env, pulls its bulk metadata and reshapes it
// into a per-country relational tree. Any failure is logged and yields nil:
// the caller must tolerate a missing result for any given environment.
func (f *Fetcher) Fetch(ctx context.Context, env config.Environment, creds client.Credentials) *EnvironmentResult {
	token := f.client.Authenticate(ctx, env, creds)

	payload, err := f.client.FetchMetadata(ctx, env, token)
	if err != nil {
		f.logger.Error("metadata fetch failed",
			zap.String("environment", string(env)),
			zap.Error(err))
		return nil
	}

	result := &EnvironmentResult{
		Environment: env,
		Countries:   make(map[string]*CountryRelation, len(payload.Country)),
		Currencies:  payload.Currency,
	}
	for _, tz := range payload.Timezone {
		result.Timezones = append(result.Timezones, tz.Name)
	}

	// Country identity plus per-country calling code, timezones, currencies.
	for _, row := range payload.Country {
		callingCode := ""
		for _, cc := range payload.CountryCallingCode {
			if cc.CountryCode == row.CodeAlpha2 {
				callingCode = cc.CountryCallingCode
				break
			}
		}

		var timezones []string
		for _, tz := range payload.CountryTimezones {
			if tz.CountryCode == row.CodeAlpha2 {
				timezones = append(timezones, tz.TimeZoneName)
			}
		}

		currencyCodes := make(map[string]bool)
		for _, cc := range payload.CountryCurrency {
			if cc.CountryCode == row.CodeAlpha2 {
				currencyCodes[cc.CurrencyCode] = true
			}
		}
		var currencies []domain.Currency
		for _, cur := range payload.Currency {
			if currencyCodes[cur.Code] {
				currencies = append(currencies, cur)
			}
		}

		result.Countries[row.CodeAlpha2] = &CountryRelation{
			CodeAlpha2:  row.CodeAlpha2,
			CodeAlpha3:  row.CodeAlpha3,
			Name:        row.Name,
			CallingCode: callingCode,
			Currencies:  currencies,
			Timezones:   timezones,
			States:      make(map[string]*StateRelation),
		}
	}

	// States carry composite codes "<country>-<suffix>"; rows without a
	// suffix or with an unknown country are skipped silently.
	for _, row := range payload.State {
		suffix := stateSuffix(row.Code)
		if suffix == "" {
			continue
		}
		country, ok := result.Countries[row.CountryCode]
		if !ok {
			continue
		}
		if _, exists := country.States[suffix]; !exists {
			country.States[suffix] = &StateRelation{Code: suffix, Name: row.Name}
		}
	}

	// Cities resolve through the same composite split on their state field;
	// unresolved paths are skipped silently.
	for _, row := range payload.City {
		suffix := stateSuffix(row.State)
		if suffix == "" {
			continue
		}
		country, ok := result.Countries[row.Country]
		if !ok {
			continue
		}
		state, ok := country.States[suffix]
		if !ok {
			continue
		}
		state.AddCity(row.Name)
	}

	f.logger.Info("metadata fetched",
		zap.String("environment", string(env)),
		zap.Int("countries", len(result.Countries)),
		zap.Int("timezones", len(result.Timezones)),
		zap.Int("currencies", len(result.Currencies)))

	return result
}

// stateSuffix extracts the state part of a composite "<country>-<suffix>"
// code. Returns "" when there is no suffix.
func stateSuffix(code string) string {
	parts := strings.Split(code, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
