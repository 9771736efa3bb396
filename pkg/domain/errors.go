package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNodeNotFound is returned by loaders when a requested node does not exist.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidTree is returned when authored content cannot form a tree.
var ErrInvalidTree = errors.New("invalid conversation tree")
