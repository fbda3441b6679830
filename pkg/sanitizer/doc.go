// Package sanitizer normalizes catalog and request input before validation.
//
// All functions are idempotent and never fail: invalid input comes back
// trimmed or empty rather than as an error.
//
// Normalization includes:
//   - Names and titles: collapse runs of whitespace, trim the ends
//   - Identifiers: trim surrounding whitespace only, case is significant
//   - Emails: trim and lowercase
//   - Slices: drop empty values and duplicates after normalization
package sanitizer
