// Package validation checks configuration and options before they are used.
//
// Struct tags are checked with go-playground/validator; ad hoc rules are
// collected with a Validator. Both report an INVALID_INPUT AppError whose
// "fields" detail lists every failing field.
//
//	err := validation.Validate(opts)
//
//	err := validation.New().
//		Required("config.name", name).
//		Merge("config.logging", logging.Validate()).
//		Validate()
package validation
