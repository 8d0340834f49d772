package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

// Credentials is the username/password pair supplied once per console
// session and relayed to every environment's login endpoint.
type Credentials struct {
	Username string
	Password string
}

// metadataTypes are the eight fixed types requested from the bulk metadata
// endpoint, unfiltered by tenant.
var metadataTypes = []string{
	"CURRENCY",
	"TIMEZONE",
	"COUNTRY",
	"STATE",
	"CITY",
	"COUNTRY_CALLING_CODE",
	"COUNTRY_TIMEZONE",
	"COUNTRY_CURRENCY",
}

// EnvironmentClient talks to one family of backend services per target
// environment.
type EnvironmentClient interface {
	// Authenticate exchanges the credentials for a bearer token. It never
	// returns an error: any failure is logged and yields an empty token,
	// so one unreachable environment cannot block the others. Callers must
	// treat an empty token as "the next call will be unauthenticated".
	Authenticate(ctx context.Context, env config.Environment, creds Credentials) string

	// FetchMetadata issues the bulk metadata GET against one environment.
	FetchMetadata(ctx context.Context, env config.Environment, token string) (*MetadataPayload, error)

	// CreateCountry posts a country creation/update payload.
	CreateCountry(ctx context.Context, env config.Environment, token string, country *domain.Country) error

	// OnboardTenant posts a tenant onboarding payload.
	OnboardTenant(ctx context.Context, env config.Environment, token string, payload map[string]interface{}) error
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Override bool   `json:"override"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// HTTPEnvironmentClient implements EnvironmentClient over HTTP.
type HTTPEnvironmentClient struct {
	cfg    *config.Config
	client *resty.Client
	logger *logger.Logger

	mu     sync.Mutex
	tokens map[config.Environment]cachedToken
}

// NewHTTPEnvironmentClient creates a new HTTP environment client.
func NewHTTPEnvironmentClient(cfg *config.Config, log *logger.Logger) *HTTPEnvironmentClient {
	client := resty.New().
		SetTimeout(cfg.Dispatch.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPEnvironmentClient{
		cfg:    cfg,
		client: client,
		logger: log,
		tokens: make(map[config.Environment]cachedToken),
	}
}

// Authenticate posts {username, password, override: true} to the login
// endpoint and returns the bearer token, or "" on any failure.
func (c *HTTPEnvironmentClient) Authenticate(ctx context.Context, env config.Environment, creds Credentials) string {
	envCfg, ok := c.cfg.EnvironmentFor(env)
	if !ok {
		c.logger.Warn("environment not configured, skipping authentication",
			zap.String("environment", string(env)))
		return ""
	}

	if c.cfg.Client.ReuseTokens {
		if token := c.cachedTokenFor(env); token != "" {
			return token
		}
	}

	var result loginResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(loginRequest{Username: creds.Username, Password: creds.Password, Override: true}).
		SetResult(&result).
		Post(envCfg.AuthBaseURL + "/auth/user/login")

	if err != nil {
		c.logger.Error("authentication request failed",
			zap.String("environment", string(env)),
			zap.Error(err))
		return ""
	}
	if resp.IsError() {
		c.logger.Error("authentication rejected",
			zap.String("environment", string(env)),
			zap.Int("status_code", resp.StatusCode()))
		return ""
	}
	if result.AccessToken == "" {
		c.logger.Error("authentication response missing access_token",
			zap.String("environment", string(env)))
		return ""
	}

	if c.cfg.Client.ReuseTokens {
		c.storeToken(env, result.AccessToken)
	}
	return result.AccessToken
}

// cachedTokenFor returns a previously issued token while its exp claim is
// comfortably in the future.
func (c *HTTPEnvironmentClient) cachedTokenFor(env config.Environment) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.tokens[env]
	if !ok {
		return ""
	}
	if time.Until(cached.expiresAt) < 30*time.Second {
		delete(c.tokens, env)
		return ""
	}
	return cached.token
}

func (c *HTTPEnvironmentClient) storeToken(env config.Environment, token string) {
	expiresAt, err := tokenExpiry(token)
	if err != nil {
		// Token without a readable exp claim is used once and not cached.
		c.logger.Debug("token expiry not readable, skipping cache",
			zap.String("environment", string(env)),
			zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[env] = cachedToken{token: token, expiresAt: expiresAt}
}

// tokenExpiry reads the exp claim without verifying the signature. The
// console only needs the lifetime; the upstream service is the verifier.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}
	return exp.Time, nil
}

// FetchMetadata requests the eight fixed metadata types in one bulk GET.
func (c *HTTPEnvironmentClient) FetchMetadata(ctx context.Context, env config.Environment, token string) (*MetadataPayload, error) {
	envCfg, ok := c.cfg.EnvironmentFor(env)
	if !ok {
		return nil, fmt.Errorf("environment %s is not configured", env)
	}

	params := url.Values{}
	for _, t := range metadataTypes {
		params.Add("types", t)
	}
	params.Set("shouldFilterByTenantId", "false")

	var payload MetadataPayload
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetAuthToken(token).
		SetResult(&payload).
		Get(envCfg.MetaBaseURL + "/metadata")

	if err != nil {
		return nil, fmt.Errorf("metadata request to %s failed: %w", env, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("metadata request to %s returned status %d", env, resp.StatusCode())
	}

	return &payload, nil
}

// CreateCountry posts the country payload to the metadata+country service.
func (c *HTTPEnvironmentClient) CreateCountry(ctx context.Context, env config.Environment, token string, country *domain.Country) error {
	envCfg, ok := c.cfg.EnvironmentFor(env)
	if !ok {
		return fmt.Errorf("environment %s is not configured", env)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(country).
		Post(envCfg.MetaBaseURL + "/country")

	if err != nil {
		return fmt.Errorf("country submission to %s failed: %w", env, err)
	}
	if resp.IsError() {
		return fmt.Errorf("country submission to %s returned status %d", env, resp.StatusCode())
	}
	return nil
}

// OnboardTenant posts the cleaned onboarding payload to the auth+tenant
// service.
func (c *HTTPEnvironmentClient) OnboardTenant(ctx context.Context, env config.Environment, token string, payload map[string]interface{}) error {
	envCfg, ok := c.cfg.EnvironmentFor(env)
	if !ok {
		return fmt.Errorf("environment %s is not configured", env)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(envCfg.AuthBaseURL + "/tenant/onboard")

	if err != nil {
		return fmt.Errorf("tenant onboarding to %s failed: %w", env, err)
	}
	if resp.IsError() {
		return fmt.Errorf("tenant onboarding to %s returned status %d", env, resp.StatusCode())
	}
	return nil
}

// NoOpEnvironmentClient is a no-op implementation for wiring tests or dry
// runs where no environment should be called.
type NoOpEnvironmentClient struct{}

// NewNoOpEnvironmentClient creates a new no-op environment client.
func NewNoOpEnvironmentClient() *NoOpEnvironmentClient {
	return &NoOpEnvironmentClient{}
}

// Authenticate returns an empty token.
func (c *NoOpEnvironmentClient) Authenticate(ctx context.Context, env config.Environment, creds Credentials) string {
	return ""
}

// FetchMetadata returns an empty payload.
func (c *NoOpEnvironmentClient) FetchMetadata(ctx context.Context, env config.Environment, token string) (*MetadataPayload, error) {
	return &MetadataPayload{}, nil
}

// CreateCountry does nothing.
func (c *NoOpEnvironmentClient) CreateCountry(ctx context.Context, env config.Environment, token string, country *domain.Country) error {
	return nil
}

// OnboardTenant does nothing.
func (c *NoOpEnvironmentClient) OnboardTenant(ctx context.Context, env config.Environment, token string, payload map[string]interface{}) error {
	return nil
}
