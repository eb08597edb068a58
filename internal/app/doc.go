// Package app provides the application service layer.
//
// Orchestrates use cases: registration and login, token verification and
// logout, list and task management scoped to the authenticated user.
// Sits between HTTP handlers and domain repositories. Depends on domain
// interfaces, not concrete implementations.
package app
