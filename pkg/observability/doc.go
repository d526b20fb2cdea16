/*
Package observability provides tools for monitoring the grounded pipeline.

It turns lifecycle hooks into Prometheus metrics and structured log lines, and
composes several hook sets into one so the CLI and servers can enable both.
*/
package observability
