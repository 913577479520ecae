// ABOUTME: Schema migration for per-recording transcription overrides
// ABOUTME: Adds model/language override columns to pre-existing databases
package db

import (
	"database/sql"
	"fmt"
)

// hasColumn checks whether the recordings table has the named column.
func hasColumn(db *sql.DB, column string) (bool, error) {
	var name string
	err := db.QueryRow(`
		SELECT name FROM pragma_table_info('recordings') WHERE name = ?
	`, column).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check column %s: %w", column, err)
	}
	return true, nil
}

// migrateOverrideColumns adds the transcription_model and
// transcription_language columns to databases created before
// per-recording overrides existed. New databases get them from the
// schema, so this is a no-op there.
func migrateOverrideColumns(db *sql.DB) error {
	for _, column := range []string{"transcription_model", "transcription_language"} {
		ok, err := hasColumn(db, column)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE recordings ADD COLUMN %s TEXT", column)); err != nil {
			return fmt.Errorf("add column %s: %w", column, err)
		}
	}
	return nil
}
