package store

// runMigrations creates the schema. Every statement is idempotent.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - user toggles as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Manifestations table - images generated when the aura appears
		`CREATE TABLE IF NOT EXISTS manifestations (
			id TEXT PRIMARY KEY,
			shape TEXT NOT NULL,
			prompt TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			image BLOB NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_manifestations_created_at ON manifestations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
