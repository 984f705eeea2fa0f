package storage

const schema = `
-- The 'blobs' table holds one serialized value per key for each review session.
CREATE TABLE IF NOT EXISTS blobs (
    session_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL,

    PRIMARY KEY (session_id, key)
);
`
