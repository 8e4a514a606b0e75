package store

// migration holds a single schema migration with its target version and
// the SQL for each supported dialect.
type migration struct {
	version  int
	sqlite   string
	postgres string
}

// sql returns the statement text for d.
func (m migration) sql(d dialect) string {
	if d == dialectPostgres {
		return m.postgres
	}
	return m.sqlite
}

// schemaVersionTable is created before any migration runs.
const schemaVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sqlite: `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT 'password',
	created_at    DATETIME NOT NULL,
	last_login_at DATETIME
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS notes (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	label_id     TEXT REFERENCES labels(id) ON DELETE SET NULL,
	due_date     DATETIME,
	is_priority  INTEGER NOT NULL DEFAULT 0 CHECK(is_priority IN (0, 1)),
	is_completed INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	completed_at DATETIME,
	is_list      INTEGER NOT NULL DEFAULT 0 CHECK(is_list IN (0, 1)),
	position     INTEGER,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	CHECK((is_completed = 0 AND completed_at IS NULL) OR (is_completed = 1 AND completed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_notes_user_completed ON notes(user_id, is_completed);
CREATE INDEX IF NOT EXISTS idx_notes_label_id ON notes(label_id);
CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notes_completed_at ON notes(user_id, completed_at);
CREATE INDEX IF NOT EXISTS idx_labels_user_id ON labels(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

CREATE TABLE IF NOT EXISTS user_stats (
	user_id        TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	updated_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS analytics_aggregates (
	user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	period_start    DATETIME NOT NULL,
	period_end      DATETIME NOT NULL,
	created_count   INTEGER NOT NULL DEFAULT 0,
	completed_count INTEGER NOT NULL DEFAULT 0,
	updated_at      DATETIME NOT NULL,
	PRIMARY KEY (user_id, period_start, period_end)
);

INSERT INTO schema_version (version) VALUES (1);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	provider      TEXT NOT NULL DEFAULT 'password',
	created_at    TIMESTAMPTZ NOT NULL,
	last_login_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS notes (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	label_id     TEXT REFERENCES labels(id) ON DELETE SET NULL,
	due_date     TIMESTAMPTZ,
	is_priority  BOOLEAN NOT NULL DEFAULT FALSE,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMPTZ,
	is_list      BOOLEAN NOT NULL DEFAULT FALSE,
	position     INTEGER,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	CHECK((NOT is_completed AND completed_at IS NULL) OR (is_completed AND completed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_notes_user_completed ON notes(user_id, is_completed);
CREATE INDEX IF NOT EXISTS idx_notes_label_id ON notes(label_id);
CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notes_completed_at ON notes(user_id, completed_at);
CREATE INDEX IF NOT EXISTS idx_labels_user_id ON labels(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

CREATE TABLE IF NOT EXISTS user_stats (
	user_id        TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS analytics_aggregates (
	user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	period_start    TIMESTAMPTZ NOT NULL,
	period_end      TIMESTAMPTZ NOT NULL,
	created_count   INTEGER NOT NULL DEFAULT 0,
	completed_count INTEGER NOT NULL DEFAULT 0,
	updated_at      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, period_start, period_end)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sqlite: `
CREATE TABLE IF NOT EXISTS preferences (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, key)
);

CREATE TABLE IF NOT EXISTS imported_messages (
	message_id  TEXT PRIMARY KEY,
	note_id     TEXT NOT NULL,
	imported_at DATETIME NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
		postgres: `
CREATE TABLE IF NOT EXISTS preferences (
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, key)
);

CREATE TABLE IF NOT EXISTS imported_messages (
	message_id  TEXT PRIMARY KEY,
	note_id     TEXT NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
