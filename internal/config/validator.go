// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Beyond the built-in `required` and `hostname_port` rules, a custom
// `boarduid` rule keeps the configured default board inside the same
// identifier policy the routing and admin paths enforce.

package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/yakboard/yakboard/internal/boardid"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("boarduid", func(fl validator.FieldLevel) bool {
		return boardid.Validate(fl.Field().String())
	})
	return val
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
