// Package postgres provides the PostgreSQL implementation of the data
// storage interfaces defined in the internal/store package. It handles
// query execution, schema migrations, and mapping between domain
// entities and database rows.
package postgres
