package repository

import (
	"context"

	"gorm.io/gorm"
)

// relationExists reports whether a table or view is present in the public
// schema. Lookup failures read as absent.
func relationExists(ctx context.Context, db *gorm.DB, name string) bool {
	var exists bool
	err := db.WithContext(ctx).
		Raw(`SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_class c
			JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
			WHERE c.relname = ? AND c.relkind IN ('r','m','v') AND n.nspname = 'public'
		)`, name).
		Scan(&exists).Error
	if err != nil {
		return false
	}
	return exists
}
