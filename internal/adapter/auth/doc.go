// Package auth implements password hashing with bcrypt and session tokens
// as HS256-signed JWTs.
package auth
