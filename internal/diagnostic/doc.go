// Package diagnostic provides structured warnings, errors and the error
// values the mapper reports.
//
// Key capabilities:
//   - Unmapped member and enum coverage reports with suggestions
//   - Skipped reverse data sources
//   - Configuration, validation and mapping errors built on go-errors
package diagnostic
