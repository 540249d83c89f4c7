// Package sanitizer cleans user-entered text before it is sent to the server.
//
// The building blocks are small pure functions:
//
//	s = sanitizer.Trim(s)
//	s = sanitizer.RemoveControlChars(s)
//	s = sanitizer.NormalizeUnicode(s)
//	s = sanitizer.MaxLength(s, 2000)
//
// Comment composes them in the order used for comment bodies, and also
// collapses runs of blank lines. LoginName prepares a login name for the
// login request. Neither function rejects input: an empty result is for the
// caller to report.
package sanitizer
