/*
Package observability provides tools for monitoring the run condition evaluator.

It exposes Prometheus metrics fed by the Gate's lifecycle hooks, so a host can
see how often conditions hold and which cause kinds its builds carry.
*/
package observability
