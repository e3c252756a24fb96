// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of query execution and data mapping between domain
// entities and database records. Dynamic list queries (filter, search,
// ordering, pagination) are built with squirrel.
package postgres
