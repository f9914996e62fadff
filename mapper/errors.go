package mapper

import "object-mapper/internal/diagnostic"

// IsConfigurationError reports whether err is caused by invalid mapping
// rules: conflicting data sources, sources for ignored members, unresolvable
// constructor parameters and the like.
func IsConfigurationError(err error) bool {
	return diagnostic.HasTextCode(err, diagnostic.TextCodeConfiguration)
}

// IsValidationError reports whether err was returned by Validate.
func IsValidationError(err error) bool {
	return diagnostic.HasTextCode(err, diagnostic.TextCodeValidation)
}

// IsMappingError reports whether err is a failure of a func called while
// mapping, such as a transform or a constructor.
func IsMappingError(err error) bool {
	return diagnostic.HasTextCode(err, diagnostic.TextCodeMapping)
}
