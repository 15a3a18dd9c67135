package store

const schema = `
CREATE TABLE IF NOT EXISTS files (
    path TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    size INTEGER NOT NULL,
    first_seen TIMESTAMP NOT NULL,
    last_checked TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Well-known meta table keys.
const (
	// MetaAlgorithm records the fingerprint algorithm the baseline was built
	// with. A mismatch with the active hasher means the baseline cannot be
	// compared and must be reinitialized.
	MetaAlgorithm = "fingerprint_algorithm"

	// MetaLastInit and MetaLastCheck hold RFC3339 timestamps of the most
	// recent successful init and check runs.
	MetaLastInit  = "last_init"
	MetaLastCheck = "last_check"
)
