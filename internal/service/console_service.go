package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prohmpiriya/onboarding-console/internal/client"
	"github.com/prohmpiriya/onboarding-console/internal/domain"
	"github.com/prohmpiriya/onboarding-console/internal/ingest"
	"github.com/prohmpiriya/onboarding-console/internal/metadata"
	"github.com/prohmpiriya/onboarding-console/internal/session"
	"github.com/prohmpiriya/onboarding-console/pkg/config"
	"github.com/prohmpiriya/onboarding-console/pkg/logger"
)

var (
	ErrSessionNotFound          = errors.New("session not found")
	ErrNoEnvironmentsSelected   = errors.New("no environments selected")
	ErrUnknownEnvironment       = errors.New("unknown environment")
	ErrEnvironmentNotConfigured = errors.New("environment not configured")
	ErrDispatchFailed           = errors.New("submission failed")
)

// DispatchResult is the outcome of one environment's submission when the
// per-environment dispatch policy is active.
type DispatchResult struct {
	Environment config.Environment `json:"environment"`
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
}

// LoginResult summarises one metadata pass.
type LoginResult struct {
	SessionID  string
	Fetched    []config.Environment
	Failed     []config.Environment
	Countries  int
	Timezones  int
	Currencies int
}

// ConsoleService drives the admin console: metadata aggregation on login,
// CSV validation, and multi-environment dispatch of country and tenant
// payloads.
type ConsoleService interface {
	// Login fetches metadata from the configured environments in parallel,
	// merges the results and stores the snapshot under a new session.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Snapshot returns the unified metadata view of a session.
	Snapshot(sessionID string) (*metadata.Unified, error)
	// ValidateCSV runs the state/city upload through the ingest rules,
	// resolving update-mode references against the session snapshot.
	ValidateCSV(sessionID string, mode ingest.Mode, countryCode string, states, cities io.Reader) ([]domain.State, []string, error)
	// SubmitCountry dispatches a country payload to the selected
	// environments. Returned strings are validation errors, if any.
	SubmitCountry(ctx context.Context, sessionID string, country *domain.Country, requireStates bool, envNames []string) ([]DispatchResult, []string, error)
	// OnboardTenant dispatches a tenant onboarding payload to the selected
	// environments.
	OnboardTenant(ctx context.Context, sessionID string, dto *domain.OnboardTenantDto, envNames []string) ([]DispatchResult, []string, error)
}

// consoleService implements ConsoleService
type consoleService struct {
	cfg       *config.Config
	envClient client.EnvironmentClient
	fetcher   *metadata.Fetcher
	processor *ingest.Processor
	sessions  session.Store
	logger    *logger.Logger
}

// NewConsoleService creates a new ConsoleService.
func NewConsoleService(
	cfg *config.Config,
	envClient client.EnvironmentClient,
	fetcher *metadata.Fetcher,
	processor *ingest.Processor,
	sessions session.Store,
	log *logger.Logger,
) ConsoleService {
	return &consoleService{
		cfg:       cfg,
		envClient: envClient,
		fetcher:   fetcher,
		processor: processor,
		sessions:  sessions,
		logger:    log,
	}
}

// Login runs the metadata pass. Environment failures are isolated: a dead
// environment is logged and skipped, the others still contribute to the
// unified snapshot.
func (s *consoleService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	creds := client.Credentials{Username: username, Password: password}
	envs := s.cfg.Metadata.Environments

	results := make([]*metadata.EnvironmentResult, len(envs))
	var wg sync.WaitGroup
	for i, env := range envs {
		wg.Add(1)
		go func(slot int, env config.Environment) {
			defer wg.Done()
			results[slot] = s.fetcher.Fetch(ctx, env, creds)
		}(i, env)
	}
	wg.Wait()

	login := &LoginResult{}
	for i, env := range envs {
		if results[i] != nil {
			login.Fetched = append(login.Fetched, env)
		} else {
			login.Failed = append(login.Failed, env)
		}
	}

	unified := metadata.Merge(results)
	sess := s.sessions.Create(creds, unified)

	login.SessionID = sess.ID
	login.Countries = len(unified.Countries)
	login.Timezones = len(unified.Timezones)
	login.Currencies = len(unified.Currencies)

	s.logger.Info("metadata pass completed",
		zap.String("session_id", sess.ID),
		zap.Int("environments_fetched", len(login.Fetched)),
		zap.Int("environments_failed", len(login.Failed)),
		zap.Int("countries", login.Countries))

	return login, nil
}

// Snapshot returns the unified metadata view of a session.
func (s *consoleService) Snapshot(sessionID string) (*metadata.Unified, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return sess.Snapshot, nil
}

// ValidateCSV runs the ingest rules over the uploaded files.
func (s *consoleService) ValidateCSV(sessionID string, mode ingest.Mode, countryCode string, states, cities io.Reader) ([]domain.State, []string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	var existing *metadata.CountryRelation
	if mode == ingest.ModeUpdate && countryCode != "" {
		existing = sess.Snapshot.Countries[countryCode]
	}

	parsed, errs := s.processor.Process(ingest.Input{
		Mode:     mode,
		States:   states,
		Cities:   cities,
		Existing: existing,
	})
	return parsed, errs, nil
}

// SubmitCountry validates and dispatches a country payload.
func (s *consoleService) SubmitCountry(ctx context.Context, sessionID string, country *domain.Country, requireStates bool, envNames []string) ([]DispatchResult, []string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	envs, err := s.resolveEnvironments(envNames)
	if err != nil {
		return nil, nil, err
	}

	if errs := country.Validate(requireStates); len(errs) > 0 {
		return nil, errs, nil
	}

	results, err := s.dispatch(ctx, sess.Credentials, envs, func(ctx context.Context, env config.Environment, token string) error {
		return s.envClient.CreateCountry(ctx, env, token, country)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("country submitted",
		zap.String("session_id", sessionID),
		zap.String("code_alpha_2", country.CodeAlpha2),
		zap.Int("environments", len(envs)))

	return results, nil, nil
}

// OnboardTenant validates, cleans and dispatches a tenant payload.
func (s *consoleService) OnboardTenant(ctx context.Context, sessionID string, dto *domain.OnboardTenantDto, envNames []string) ([]DispatchResult, []string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	envs, err := s.resolveEnvironments(envNames)
	if err != nil {
		return nil, nil, err
	}

	if errs := dto.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	payload := dto.CleanForDispatch()
	results, err := s.dispatch(ctx, sess.Credentials, envs, func(ctx context.Context, env config.Environment, token string) error {
		return s.envClient.OnboardTenant(ctx, env, token, payload)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("tenant onboarded",
		zap.String("session_id", sessionID),
		zap.String("party_id", dto.Tenant.PartyID),
		zap.Int("environments", len(envs)))

	return results, nil, nil
}

// resolveEnvironments parses and checks the selected environment names.
func (s *consoleService) resolveEnvironments(envNames []string) ([]config.Environment, error) {
	if len(envNames) == 0 {
		return nil, ErrNoEnvironmentsSelected
	}

	envs := make([]config.Environment, 0, len(envNames))
	for _, name := range envNames {
		env, err := config.ParseEnvironment(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEnvironment, name)
		}
		if _, ok := s.cfg.EnvironmentFor(env); !ok {
			return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotConfigured, env)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// dispatch authenticates against every selected environment in parallel,
// then issues one call per environment carrying that environment's own
// token, also in parallel. Authentication is best-effort: a failed login
// yields an empty token and the subsequent call fails with the backend's
// rejection rather than aborting up front.
func (s *consoleService) dispatch(
	ctx context.Context,
	creds client.Credentials,
	envs []config.Environment,
	call func(ctx context.Context, env config.Environment, token string) error,
) ([]DispatchResult, error) {
	tokens := make([]string, len(envs))
	var wg sync.WaitGroup
	for i, env := range envs {
		wg.Add(1)
		go func(slot int, env config.Environment) {
			defer wg.Done()
			tokens[slot] = s.envClient.Authenticate(ctx, env, creds)
		}(i, env)
	}
	wg.Wait()

	if s.cfg.Dispatch.FailFast {
		// All-or-nothing: the first environment error aborts the batch and
		// surfaces as one generic dispatch error.
		g, gctx := errgroup.WithContext(ctx)
		for i, env := range envs {
			g.Go(func() error {
				return call(gctx, env, tokens[i])
			})
		}
		if err := g.Wait(); err != nil {
			s.logger.Error("dispatch failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		results := make([]DispatchResult, len(envs))
		for i, env := range envs {
			results[i] = DispatchResult{Environment: env, Success: true}
		}
		return results, nil
	}

	// Per-environment results: every environment runs to completion and
	// reports its own outcome.
	results := make([]DispatchResult, len(envs))
	for i, env := range envs {
		wg.Add(1)
		go func(slot int, env config.Environment) {
			defer wg.Done()
			if err := call(ctx, env, tokens[slot]); err != nil {
				s.logger.Error("dispatch to environment failed",
					zap.String("environment", string(env)),
					zap.Error(err))
				results[slot] = DispatchResult{Environment: env, Success: false, Error: err.Error()}
				return
			}
			results[slot] = DispatchResult{Environment: env, Success: true}
		}(i, env)
	}
	wg.Wait()

	return results, nil
}
