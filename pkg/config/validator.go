package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// fileURIScheme is the prefix the MCP specification (2024-11-05) requires
// for root URIs.
const fileURIScheme = "file://"

// RegisterCustomValidators registers custom validation functions.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("file_uri", validateFileURI)
}

// validateFileURI checks that a root URI carries the file:// scheme.
func validateFileURI(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), fileURIScheme)
}
