// Package store defines the persistence interfaces for the bookstore's
// entities, along with the shared error vocabulary and transaction helper
// used by all implementations. Concrete implementations live under
// internal/platform/postgres.
package store
