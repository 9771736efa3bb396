// Package middleware wraps a ports.SessionStore with encryption at rest.
// Stored dialogs are live state and are never rewritten; redaction of user
// text happens in the logs instead (see internal/logging).
package middleware
