/*
Package observability provides tools for monitoring agents.

Metrics turns planning and execution events into Prometheus series, and
LoggingHooks records the same events through slog. Both are exposed as
domain.LifecycleHooks; use Combine to install several at once.
*/
package observability
