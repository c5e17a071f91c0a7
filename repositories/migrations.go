package repositories

type migration struct {
	version int
	sql     string
}

// migrations run in order; versions are sequential from 1. Column names are
// the task wire names so rows and documents share one vocabulary.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL UNIQUE,
	password  TEXT NOT NULL,
	createdAt DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	"user"      TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT 'medium',
	completed   INTEGER NOT NULL DEFAULT 0,
	"order"     INTEGER NOT NULL DEFAULT 0,
	createdAt   DATETIME NOT NULL,
	updatedAt   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_order ON tasks("user", "order");

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS activity (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	"user"    TEXT NOT NULL,
	task      TEXT NOT NULL,
	action    TEXT NOT NULL,
	title     TEXT NOT NULL DEFAULT '',
	createdAt DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_user ON activity("user", createdAt);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
