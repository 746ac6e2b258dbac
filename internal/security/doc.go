// Package security inspects the TLS certificates served by feed endpoints,
// reporting valid, expiring (30 days or less), expired or unreachable.
package security
