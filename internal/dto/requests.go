package dto

import (
	"github.com/prohmpiriya/onboarding-console/internal/domain"
)

// CreateSessionRequest carries the operator credentials relayed to every
// environment. They are held in memory only.
type CreateSessionRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateSessionResponse summarises the metadata pass run on login.
type CreateSessionResponse struct {
	SessionID           string   `json:"session_id"`
	EnvironmentsFetched []string `json:"environments_fetched"`
	EnvironmentsFailed  []string `json:"environments_failed,omitempty"`
	Countries           int      `json:"countries"`
	Timezones           int      `json:"timezones"`
	Currencies          int      `json:"currencies"`
}

// SubmitCountryRequest dispatches a country payload to the selected
// environments. Mode add requires states; update does not.
type SubmitCountryRequest struct {
	SessionID    string         `json:"session_id" binding:"required"`
	Environments []string       `json:"environments" binding:"required,min=1,dive,environment"`
	Mode         string         `json:"mode" binding:"omitempty,oneof=add update"`
	Country      domain.Country `json:"country" binding:"required"`
}

// OnboardTenantRequest dispatches a tenant onboarding payload to the
// selected environments.
type OnboardTenantRequest struct {
	SessionID    string                  `json:"session_id" binding:"required"`
	Environments []string                `json:"environments" binding:"required,min=1,dive,environment"`
	Tenant       domain.OnboardTenantDto `json:"tenant" binding:"required"`
}

// ValidateCSVForm is the multipart form accompanying the state/city files.
type ValidateCSVForm struct {
	SessionID   string `form:"session_id" binding:"required"`
	Mode        string `form:"mode" binding:"omitempty,oneof=add update"`
	CountryCode string `form:"country_code" binding:"omitempty"`
}

// ValidateCSVResponse returns the parsed states of a clean upload.
type ValidateCSVResponse struct {
	States []domain.State `json:"states"`
}

// DispatchResponse reports the dispatch outcome. Results carries one entry
// per environment when the per-environment policy is active.
type DispatchResponse struct {
	Results interface{} `json:"results"`
}
