/*
Package observability turns dialog events into Prometheus metrics and
structured log lines.

Both are exposed as domain.DialogHooks and can be combined with
domain.ComposeHooks before being handed to arbor.WithHooks.
*/
package observability
