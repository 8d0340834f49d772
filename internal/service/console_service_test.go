package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/onboarding-console/internal/client"
	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/internal/ingest"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
	"github.com/prohmpiriya/onboarding-console/internal/session"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

// fakeEnvironmentClient records every call per environment and can be
// programmed to fail selectively.
type fakeEnvironmentClient struct {
	mu sync.Mutex

	tokens      map[config.Environment]string
	metadata    map[config.Environment]*client.MetadataPayload
	metadataErr map[config.Environment]error
	countryErr  map[config.Environment]error
	tenantErr   map[config.Environment]error

	authCalls    []config.Environment
	countryCalls map[config.Environment][]string // env -> tokens used
	tenantCalls  map[config.Environment][]map[string]interface{}
}

func newFakeEnvironmentClient() *fakeEnvironmentClient {
	return &fakeEnvironmentClient{
		tokens:       make(map[config.Environment]string),
		metadata:     make(map[config.Environment]*client.MetadataPayload),
		metadataErr:  make(map[config.Environment]error),
		countryErr:   make(map[config.Environment]error),
		tenantErr:    make(map[config.Environment]error),
		countryCalls: make(map[config.Environment][]string),
		tenantCalls:  make(map[config.Environment][]map[string]interface{}),
	}
}

func (f *fakeEnvironmentClient) Authenticate(ctx context.Context, env config.Environment, creds client.Credentials) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls = append(f.authCalls, env)
	return f.tokens[env]
}

func (f *fakeEnvironmentClient) FetchMetadata(ctx context.Context, env config.Environment, token string) (*client.MetadataPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.metadataErr[env]; err != nil {
		return nil, err
	}
	if payload, ok := f.metadata[env]; ok {
		return payload, nil
	}
	return &client.MetadataPayload{}, nil
}

func (f *fakeEnvironmentClient) CreateCountry(ctx context.Context, env config.Environment, token string, country *domain.Country) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countryCalls[env] = append(f.countryCalls[env], token)
	return f.countryErr[env]
}

func (f *fakeEnvironmentClient) OnboardTenant(ctx context.Context, env config.Environment, token string, payload map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenantCalls[env] = append(f.tenantCalls[env], payload)
	return f.tenantErr[env]
}

func serviceConfig() *config.Config {
	envs := map[config.Environment]config.EnvironmentConfig{
		config.EnvStg: {AuthBaseURL: "http://stg.auth", MetaBaseURL: "http://stg.meta"},
		config.EnvUat: {AuthBaseURL: "http://uat.auth", MetaBaseURL: "http://uat.meta"},
	}
	return &config.Config{
		Environments: envs,
		Metadata:     config.MetadataConfig{Environments: []config.Environment{config.EnvStg, config.EnvUat}},
		Dispatch:     config.DispatchConfig{FailFast: true},
	}
}

func newTestService(cfg *config.Config, fake *fakeEnvironmentClient) (ConsoleService, session.Store) {
	log := logger.NewNop()
	fetcher := metadata.NewFetcher(fake, log)
	processor := ingest.NewProcessor(ingest.NewCSVParser())
	sessions := session.NewMemoryStore()
	return NewConsoleService(cfg, fake, fetcher, processor, sessions, log), sessions
}

func metadataWith(country, name string) *client.MetadataPayload {
	return &client.MetadataPayload{
		Country:  []client.CountryRow{{CodeAlpha2: country, CodeAlpha3: country + "X", Name: name}},
		Timezone: []client.TimezoneRow{{Name: "America/New_York"}},
		Currency: []domain.Currency{{Code: "USD", Currency: "US Dollar", Number: 840}},
	}
}

func TestConsoleService_Login_ToleratesEnvironmentFailure(t *testing.T) {
	fake := newFakeEnvironmentClient()
	fake.metadataErr[config.EnvStg] = errors.New("stg is down")
	fake.metadata[config.EnvUat] = metadataWith("US", "United States")

	svc, sessions := newTestService(serviceConfig(), fake)

	result, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, []config.Environment{config.EnvUat}, result.Fetched)
	assert.Equal(t, []config.Environment{config.EnvStg}, result.Failed)
	assert.Equal(t, 1, result.Countries)
	assert.Equal(t, 1, result.Timezones)
	assert.Equal(t, 1, result.Currencies)

	sess, err := sessions.Get(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "admin", sess.Credentials.Username)
	assert.Contains(t, sess.Snapshot.Countries, "US")
}

func TestConsoleService_Login_MergesAcrossEnvironments(t *testing.T) {
	fake := newFakeEnvironmentClient()
	fake.metadata[config.EnvStg] = metadataWith("US", "United States")
	fake.metadata[config.EnvUat] = metadataWith("CA", "Canada")

	svc, _ := newTestService(serviceConfig(), fake)

	result, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Countries)
	assert.Len(t, result.Fetched, 2)
	assert.Empty(t, result.Failed)
}

func TestConsoleService_Snapshot(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)

	sess := sessions.Create(client.Credentials{}, &metadata.Unified{
		Countries:  map[string]*metadata.CountryRelation{},
		Currencies: map[string]domain.Currency{},
	})

	snapshot, err := svc.Snapshot(sess.ID)
	require.NoError(t, err)
	assert.NotNil(t, snapshot)

	_, err = svc.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConsoleService_SubmitCountry_PerEnvironmentTokens(t *testing.T) {
	fake := newFakeEnvironmentClient()
	fake.tokens[config.EnvStg] = "stg-token"
	fake.tokens[config.EnvUat] = "uat-token"

	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{Username: "admin"}, &metadata.Unified{})

	country := &domain.Country{
		Name:        "Canada",
		CodeAlpha2:  "CA",
		CodeAlpha3:  "CAN",
		CallingCode: "+1",
		Currencies:  []domain.Currency{{Code: "CAD", Currency: "Canadian Dollar", Number: 124}},
		Timezones:   []string{"America/Toronto"},
		States:      []domain.State{{Code: "ON", Name: "Ontario", Cities: []string{"Toronto"}}},
	}

	results, validationErrs, err := svc.SubmitCountry(context.Background(), sess.ID, country, true, []string{"STG", "UAT"})
	require.NoError(t, err)
	assert.Empty(t, validationErrs)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
	}

	// One call per environment, each carrying that environment's own token.
	require.Len(t, fake.countryCalls[config.EnvStg], 1)
	require.Len(t, fake.countryCalls[config.EnvUat], 1)
	assert.Equal(t, "stg-token", fake.countryCalls[config.EnvStg][0])
	assert.Equal(t, "uat-token", fake.countryCalls[config.EnvUat][0])
}

func TestConsoleService_SubmitCountry_ValidationErrorsSkipDispatch(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	_, validationErrs, err := svc.SubmitCountry(context.Background(), sess.ID, &domain.Country{}, true, []string{"STG"})
	require.NoError(t, err)
	assert.NotEmpty(t, validationErrs)
	assert.Empty(t, fake.countryCalls[config.EnvStg])
}

func TestConsoleService_SubmitCountry_FailFastAbortsBatch(t *testing.T) {
	fake := newFakeEnvironmentClient()
	fake.countryErr[config.EnvStg] = errors.New("stg rejected")

	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	country := &domain.Country{
		Name:        "Canada",
		CodeAlpha2:  "CA",
		CodeAlpha3:  "CAN",
		CallingCode: "+1",
		Currencies:  []domain.Currency{{Code: "CAD", Currency: "Canadian Dollar", Number: 124}},
		Timezones:   []string{"America/Toronto"},
	}

	results, _, err := svc.SubmitCountry(context.Background(), sess.ID, country, false, []string{"STG", "UAT"})
	require.ErrorIs(t, err, ErrDispatchFailed)
	assert.Nil(t, results)
}

func TestConsoleService_SubmitCountry_CollectModeReportsPerEnvironment(t *testing.T) {
	cfg := serviceConfig()
	cfg.Dispatch.FailFast = false

	fake := newFakeEnvironmentClient()
	fake.countryErr[config.EnvStg] = errors.New("stg rejected")

	svc, sessions := newTestService(cfg, fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	country := &domain.Country{
		Name:        "Canada",
		CodeAlpha2:  "CA",
		CodeAlpha3:  "CAN",
		CallingCode: "+1",
		Currencies:  []domain.Currency{{Code: "CAD", Currency: "Canadian Dollar", Number: 124}},
		Timezones:   []string{"America/Toronto"},
	}

	results, _, err := svc.SubmitCountry(context.Background(), sess.ID, country, false, []string{"STG", "UAT"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, config.EnvStg, results[0].Environment)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "stg rejected")

	assert.Equal(t, config.EnvUat, results[1].Environment)
	assert.True(t, results[1].Success)
}

func TestConsoleService_SubmitCountry_EnvironmentSelectionErrors(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	country := &domain.Country{}

	tests := []struct {
		name      string
		sessionID string
		envs      []string
		wantErr   error
	}{
		{"unknown session", "missing", []string{"STG"}, ErrSessionNotFound},
		{"no environments", sess.ID, nil, ErrNoEnvironmentsSelected},
		{"unknown environment", sess.ID, []string{"MOON"}, ErrUnknownEnvironment},
		{"unconfigured environment", sess.ID, []string{"CANADA_PROD"}, ErrEnvironmentNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SubmitCountry(context.Background(), tt.sessionID, country, true, tt.envs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConsoleService_OnboardTenant_StripsEmptyFields(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	dto := &domain.OnboardTenantDto{
		Tenant: domain.TenantEntry{PartyID: "ACM", CountryCode: "CA", Name: "Acme"},
		Users: []domain.UserEntry{{
			FirstName:          "Jordan",
			Email:              "jordan@acme.example",
			CountryCallingCode: "+1",
			ContactNumber:      "5550100",
			Role:               domain.RoleAdmin,
		}},
		BusinessDetail: domain.BusinessDetailEntry{
			Name:               "Acme Inc",
			Email:              "ops@acme.example",
			ContactNumber:      "5550101",
			CountryCallingCode: "+1",
		},
	}

	results, validationErrs, err := svc.OnboardTenant(context.Background(), sess.ID, dto, []string{"STG"})
	require.NoError(t, err)
	assert.Empty(t, validationErrs)
	require.Len(t, results, 1)

	require.Len(t, fake.tenantCalls[config.EnvStg], 1)
	payload := fake.tenantCalls[config.EnvStg][0]

	tenant, ok := payload["tenant"].(map[string]interface{})
	require.True(t, ok)
	_, hasLogo := tenant["logoImageUrl"]
	assert.False(t, hasLogo, "empty optional fields must not reach the wire")

	business, ok := payload["businessDetail"].(map[string]interface{})
	require.True(t, ok)
	_, hasWebsite := business["websiteUrl"]
	assert.False(t, hasWebsite)
}

func TestConsoleService_OnboardTenant_ValidationErrors(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)
	sess := sessions.Create(client.Credentials{}, &metadata.Unified{})

	_, validationErrs, err := svc.OnboardTenant(context.Background(), sess.ID, &domain.OnboardTenantDto{}, []string{"STG"})
	require.NoError(t, err)
	assert.NotEmpty(t, validationErrs)
	assert.Empty(t, fake.tenantCalls[config.EnvStg])
}

func TestConsoleService_ValidateCSV(t *testing.T) {
	fake := newFakeEnvironmentClient()
	svc, sessions := newTestService(serviceConfig(), fake)

	snapshot := &metadata.Unified{
		Countries: map[string]*metadata.CountryRelation{
			"US": {
				CodeAlpha2: "US",
				States: map[string]*metadata.StateRelation{
					"NY": {Code: "NY", Name: "New York", Cities: []string{"Albany"}},
				},
			},
		},
	}
	sess := sessions.Create(client.Credentials{}, snapshot)

	t.Run("add mode", func(t *testing.T) {
		states, errs, err := svc.ValidateCSV(sess.ID, ingest.ModeAdd, "",
			strings.NewReader("code,name\nCA,California\n"),
			strings.NewReader("state_code,city_name\nCA,Los Angeles\n"))
		require.NoError(t, err)
		assert.Empty(t, errs)
		require.Len(t, states, 1)
		assert.Equal(t, "CA", states[0].Code)
	})

	t.Run("update mode resolves against snapshot", func(t *testing.T) {
		states, errs, err := svc.ValidateCSV(sess.ID, ingest.ModeUpdate, "US",
			nil,
			strings.NewReader("state_code,city_name\nNY,Buffalo\n"))
		require.NoError(t, err)
		assert.Empty(t, errs)
		require.Len(t, states, 1)
		assert.Equal(t, "New York", states[0].Name)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := svc.ValidateCSV("missing", ingest.ModeAdd, "", nil, nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}
