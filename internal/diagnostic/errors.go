package diagnostic

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every error the mapper returns.
const (
	TextCodeConfiguration = "MAPPER_CONFIGURATION"
	TextCodeValidation    = "MAPPER_VALIDATION"
	TextCodeMapping       = "MAPPER_MAPPING_FAILED"
)

// Metadata keys.
const (
	MetaPair    = "pair"
	MetaTarget  = "target"
	MetaRuleSet = "rule_set"
	MetaSource  = "source"
)

// NewConfigurationError reports an invalid or conflicting rule. The message
// must name the offending rule and target member.
func NewConfigurationError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeConfiguration)

	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}

	return err
}

// NewValidationError converts the error diagnostics into a validation error
// with one field error per diagnostic.
func NewValidationError(d *Diagnostics) *goerrors.Error {
	fields := make([]goerrors.FieldError, 0, len(d.Errors))
	for _, diag := range d.Errors {
		field := diag.FieldPath
		if diag.TypePair != "" {
			field = diag.TypePair + ":" + field
		}

		fields = append(fields, goerrors.FieldError{
			Field:   field,
			Message: diag.Message,
			Value:   diag.Code,
		})
	}

	return goerrors.NewValidation("mapping validation failed", fields...).
		WithTextCode(TextCodeValidation).
		WithSeverity(goerrors.SeverityError)
}

// NewMappingError wraps a failure raised while executing a mapping. It is
// built with New rather than Wrap so a cause that already is a go-errors value
// keeps its own category.
func NewMappingError(cause error, message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithTextCode(TextCodeMapping)
	err.Source = cause

	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}

	return err
}

// HasTextCode reports whether err (or any error it wraps) is a go-errors value
// carrying the text code.
func HasTextCode(err error, code string) bool {
	for err != nil {
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			return false
		}

		if rich.TextCode == code {
			return true
		}

		err = rich.Source
	}

	return false
}
