// Package migrations registers the storefront schema with pkg/migration.
// It is imported for its side effects by the CLI.
package migrations
