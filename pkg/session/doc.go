/*
Package session hosts many independent dialogs keyed by session ID.

Every operation runs under a per-session lock (a reference-counted local mutex,
plus an optional ports.DistributedLocker when several replicas share a store),
loads the live snapshot, applies one dialog operation and saves it back.
Closing a dialog deletes its state; there is no resume after Close.
*/
package session
