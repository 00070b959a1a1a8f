package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the colony's
// cross-field rules registered
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(validateSimulation, SimulationConfig{})
	v.RegisterStructValidation(validateDatabase, DatabaseConfig{})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Namespace(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// a worker cannot tick faster than the loop that drives it
func validateSimulation(sl validator.StructLevel) {
	sim := sl.Current().Interface().(SimulationConfig)
	if sim.Worker.TickInterval > 0 && sim.Worker.TickInterval < sim.FrameInterval {
		sl.ReportError(sim.Worker.TickInterval, "Worker.TickInterval", "TickInterval", "gtefield_frame", "")
	}
}

func validateDatabase(sl validator.StructLevel) {
	db := sl.Current().Interface().(DatabaseConfig)
	if db.Type == "postgres" && db.URL == "" && db.Host == "" {
		sl.ReportError(db.Host, "Host", "Host", "required_for_postgres", "")
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
