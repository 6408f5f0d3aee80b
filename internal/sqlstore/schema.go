package sqlstore

// Schema holds one row per index entry. pos is the entry's position within
// its display key's group.
const Schema = `
CREATE TABLE IF NOT EXISTS entries (
	key            TEXT    NOT NULL,
	pos            INTEGER NOT NULL,
	qualified_name TEXT    NOT NULL,
	anchor         TEXT    NOT NULL,
	PRIMARY KEY (key, pos),
	UNIQUE (key, qualified_name, anchor)
);

CREATE TABLE IF NOT EXISTS metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
