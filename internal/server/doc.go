// Package server provides the MCP server context, session tracking, and
// operational HTTP endpoints for the calagent application.
//
// # Key Components
//
// ServerContext wires the proxy client, bulk executor, generation
// service, and calendar agent from configuration, and owns shutdown of
// all of them.
//
// SessionIDManager tracks sessions for the HTTP transport. It derives a
// stable session ID from each caller's Bearer token, enabling several
// orchestrator instances to share a single server.
//
// HealthChecker exposes Kubernetes-style liveness and readiness endpoints.
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from application traffic.
package server
