package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/prohmpiriya/onboarding-console/pkg/config"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Call once at startup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("environment", validEnvironment)
}

// validEnvironment accepts the known environment names.
func validEnvironment(fl validator.FieldLevel) bool {
	_, err := config.ParseEnvironment(fl.Field().String())
	return err == nil
}
