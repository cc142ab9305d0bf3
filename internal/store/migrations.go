package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per run of the pipeline
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			sensor TEXT NOT NULL,
			injector TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			end_reason TEXT NOT NULL DEFAULT ''
		)`,

		// Origin reference captured once per session
		`CREATE TABLE IF NOT EXISTS calibrations (
			session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
			points TEXT NOT NULL,
			captured_ms INTEGER NOT NULL
		)`,

		// Press and release events sent to the injector
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('press', 'release')),
			label TEXT NOT NULL,
			key TEXT NOT NULL DEFAULT '',
			button TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			at_ms INTEGER NOT NULL
		)`,

		// Published samples, when sample recording is on
		`CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			label TEXT NOT NULL,
			at_ms INTEGER NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_session_id ON samples(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
