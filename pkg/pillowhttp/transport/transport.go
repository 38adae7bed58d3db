// Package transport provides concrete implementations of the client
// engine's Transport contract (client.Transport, spec component C7): a
// net.Dial-backed TCP transport for real connections, and an in-memory
// pipe transport for deterministic tests and examples. Neither the
// message parser nor the client engine imports net directly; both talk
// only to the client.Transport interface, which these types satisfy
// structurally.
package transport
