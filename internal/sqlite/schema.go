// Schema DDL for the sqlite link store.
package sqlite

// AUTOINCREMENT makes sqlite track the largest ever rowid in
// sqlite_sequence, so ids stay monotonic and are never reissued after a
// delete, even across process restarts.
const createLinks = `CREATE TABLE IF NOT EXISTS links (
    link_id INTEGER PRIMARY KEY AUTOINCREMENT,
    source INTEGER NOT NULL,
    target INTEGER NOT NULL
);`

// Index DDL for the common partial-match scans.
const (
	idxLinksSource = `CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);`
	idxLinksTarget = `CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);`
)

// schemaDDL lists all statements executed at Open.
var schemaDDL = []string{
	createLinks,
	idxLinksSource,
	idxLinksTarget,
}
