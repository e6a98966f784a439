// Package accountservice implements registration, login sessions, and
// role-based authorization inside the identity-access context.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: use cases built on explicit ports
// - ports: stable boundaries for persistence/sessions/hashing
// - adapters: concrete memory, postgres, bcrypt, and HTTP implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application.
package accountservice
