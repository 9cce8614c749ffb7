// Package testgateway is an in-memory stand-in for the quzhan gateway and
// the user-hub, post-service and post-search backends behind it.
//
// It speaks the same envelope ({code, message, data}), issues HS256 access
// tokens, keeps the refresh token in an HTTP-only cookie and answers with
// the reserved business codes (40101, 40102, 40103) the real services use.
// Tests drive it through httptest; cmd/testgateway serves it for manual runs
// of the CLI. Fault injection hooks (refresh delay, forced refresh failures)
// make the refresh paths deterministic.
package testgateway
