package domain

import (
	"fmt"
	"net/url"
	"regexp"
)

// Role is a tenant user's role.
type Role string

const (
	RoleAdmin     Role = "AD"
	RoleSuperUser Role = "SU"
)

var (
	PartyIDPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// TenantEntry is the tenant block of the onboarding payload.
type TenantEntry struct {
	PartyID          string `json:"partyId"`
	CountryCode      string `json:"countryCode"`
	Name             string `json:"name"`
	LogoImageURL     string `json:"logoImageUrl,omitempty"`
	PrimaryColorCode string `json:"primaryColorCode,omitempty"`
	SenderEmailID    string `json:"senderEmailId,omitempty"`
	AndroidAppURL    string `json:"androidAppUrl,omitempty"`
	IOSAppURL        string `json:"iosAppUrl,omitempty"`
}

// UserEntry is one tenant user. The first user in the list is the primary
// user and cannot be removed.
type UserEntry struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	CountryCallingCode string `json:"country_calling_code"`
	ContactNumber      string `json:"contact_number"`
	Role               Role   `json:"role"`
	IsTenantAdmin      bool   `json:"is_tenant_admin,omitempty"`
	Disable2FA         bool   `json:"disable2FA,omitempty"`
}

// BusinessDetailEntry is the business block of the onboarding payload.
type BusinessDetailEntry struct {
	Name               string `json:"name"`
	WebsiteURL         string `json:"websiteUrl,omitempty"`
	Email              string `json:"email"`
	ContactNumber      string `json:"contactNumber"`
	CountryCallingCode string `json:"countryCallingCode"`
	BrandColor         string `json:"brandColor,omitempty"`
}

// SettingsEntry is one free-form key/value setting. Duplicate keys are not
// checked.
type SettingsEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OnboardTenantDto is the full tenant onboarding payload.
type OnboardTenantDto struct {
	Tenant         TenantEntry         `json:"tenant"`
	Users          []UserEntry         `json:"users"`
	BusinessDetail BusinessDetailEntry `json:"businessDetail"`
	Settings       []SettingsEntry     `json:"settings,omitempty"`
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidURL reports whether s parses as an absolute URL.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks the whole onboarding payload and returns every problem
// found as a human-readable message.
func (d *OnboardTenantDto) Validate() []string {
	var errs []string

	// Tenant
	if !PartyIDPattern.MatchString(d.Tenant.PartyID) {
		errs = append(errs, "Party ID must be exactly 3 uppercase letters.")
	}
	if d.Tenant.CountryCode == "" {
		errs = append(errs, "Country code is required.")
	}
	if d.Tenant.Name == "" {
		errs = append(errs, "Tenant name is required.")
	}
	for field, value := range map[string]string{
		"logoImageUrl":  d.Tenant.LogoImageURL,
		"androidAppUrl": d.Tenant.AndroidAppURL,
		"iosAppUrl":     d.Tenant.IOSAppURL,
	} {
		if value != "" && !ValidURL(value) {
			errs = append(errs, fmt.Sprintf("Tenant %s is not a valid URL.", field))
		}
	}
	if d.Tenant.SenderEmailID != "" && !ValidEmail(d.Tenant.SenderEmailID) {
		errs = append(errs, "Tenant sender email is not a valid email address.")
	}

	// Users
	if len(d.Users) == 0 {
		errs = append(errs, "At least one user is required.")
	}
	for i, user := range d.Users {
		if user.FirstName == "" {
			errs = append(errs, fmt.Sprintf("User %d: first name is required.", i+1))
		}
		if !ValidEmail(user.Email) {
			errs = append(errs, fmt.Sprintf("User %d: email is not valid.", i+1))
		}
		if user.ContactNumber == "" {
			errs = append(errs, fmt.Sprintf("User %d: contact number is required.", i+1))
		}
		if user.CountryCallingCode == "" {
			errs = append(errs, fmt.Sprintf("User %d: country calling code is required.", i+1))
		}
		if user.Role != RoleAdmin && user.Role != RoleSuperUser {
			errs = append(errs, fmt.Sprintf("User %d: role must be AD or SU.", i+1))
		}
	}

	// Business detail
	if d.BusinessDetail.Name == "" {
		errs = append(errs, "Business name is required.")
	}
	if !ValidEmail(d.BusinessDetail.Email) {
		errs = append(errs, "Business email is not valid.")
	}
	if d.BusinessDetail.ContactNumber == "" {
		errs = append(errs, "Business contact number is required.")
	}
	if d.BusinessDetail.CountryCallingCode == "" {
		errs = append(errs, "Business country calling code is required.")
	}
	if d.BusinessDetail.WebsiteURL != "" && !ValidURL(d.BusinessDetail.WebsiteURL) {
		errs = append(errs, "Business website is not a valid URL.")
	}

	// Settings
	for i, setting := range d.Settings {
		if setting.Key == "" {
			errs = append(errs, fmt.Sprintf("Setting %d: key is required.", i+1))
		}
		if setting.Value == "" {
			errs = append(errs, fmt.Sprintf("Setting %d: value is required.", i+1))
		}
	}

	return errs
}

// CleanForDispatch builds the outgoing payload. Empty string fields are
// stripped from the tenant and businessDetail objects so absent optionals
// never go over the wire as ""; users and settings are passed through
// untouched.
func (d *OnboardTenantDto) CleanForDispatch() map[string]interface{} {
	payload := map[string]interface{}{
		"tenant": removeEmptyStrings(map[string]interface{}{
			"partyId":          d.Tenant.PartyID,
			"countryCode":      d.Tenant.CountryCode,
			"name":             d.Tenant.Name,
			"logoImageUrl":     d.Tenant.LogoImageURL,
			"primaryColorCode": d.Tenant.PrimaryColorCode,
			"senderEmailId":    d.Tenant.SenderEmailID,
			"androidAppUrl":    d.Tenant.AndroidAppURL,
			"iosAppUrl":        d.Tenant.IOSAppURL,
		}),
		"users": d.Users,
		"businessDetail": removeEmptyStrings(map[string]interface{}{
			"name":               d.BusinessDetail.Name,
			"websiteUrl":         d.BusinessDetail.WebsiteURL,
			"email":              d.BusinessDetail.Email,
			"contactNumber":      d.BusinessDetail.ContactNumber,
			"countryCallingCode": d.BusinessDetail.CountryCallingCode,
			"brandColor":         d.BusinessDetail.BrandColor,
		}),
	}
	if len(d.Settings) > 0 {
		payload["settings"] = d.Settings
	}
	return payload
}

// removeEmptyStrings drops keys whose value is the empty string. Non-string
// values are kept as-is.
func removeEmptyStrings(obj map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}
