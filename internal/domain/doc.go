// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (user.go, list.go, task.go, auth.go, cache.go) hold
// shared types, sentinel errors and the repository contracts that adapters
// implement. No I/O happens here; the only logic is the slug rule and input
// validation shared by the service and the client.
package domain
