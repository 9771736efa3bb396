// Package http serves dialogs over a JSON API built on chi.
//
// Each session lives in a ports.DialogHost. Every mutating endpoint pushes
// the new view to subscribers of GET /sessions/{id}/events, which receive
// domain.SnapshotDiff payloads.
package http
