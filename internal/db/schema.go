package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS admins (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    full_name     TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'admin' CHECK (role IN ('super_admin', 'admin')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_username_active
    ON admins(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS students (
    id           INTEGER PRIMARY KEY,
    roll_number  TEXT NOT NULL,
    full_name    TEXT NOT NULL,
    department   TEXT NOT NULL DEFAULT '',
    year         TEXT NOT NULL DEFAULT '',
    dob          TEXT NOT NULL,
    email        TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at   DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_students_roll_active
    ON students(roll_number) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS student_notes (
    id         INTEGER PRIMARY KEY,
    student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    note       TEXT NOT NULL,
    admin      TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id              INTEGER PRIMARY KEY,
    item_type       TEXT NOT NULL CHECK (item_type IN ('lost', 'found')),
    item_keyword    TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL,
    location        TEXT NOT NULL,
    date            TEXT NOT NULL DEFAULT '',
    time            TEXT NOT NULL DEFAULT '',
    secret_message  TEXT NOT NULL DEFAULT '',
    student_id      INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    image           BLOB,
    image_mime      TEXT,
    status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'claimed', 'returned', 'deleted')),
    previous_status TEXT,
    delete_reason   TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at      DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_student ON items(student_id);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);

CREATE TABLE IF NOT EXISTS claims (
    id                   INTEGER PRIMARY KEY,
    item_id              INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    student_id           INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    message              TEXT NOT NULL DEFAULT '',
    product_type         TEXT NOT NULL DEFAULT '',
    description          TEXT NOT NULL DEFAULT '',
    identification_marks TEXT NOT NULL DEFAULT '',
    lost_location        TEXT NOT NULL DEFAULT '',
    approximate_date     TEXT NOT NULL DEFAULT '',
    match_percentage     INTEGER NOT NULL DEFAULT 0 CHECK (match_percentage BETWEEN 0 AND 100),
    qa_data              TEXT NOT NULL DEFAULT '[]',
    ai_analysis          TEXT,
    status               TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'under_review', 'approved', 'rejected')),
    notes                TEXT,
    decided_by           INTEGER REFERENCES admins(id),
    decided_at           DATETIME,
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id);
CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);

CREATE TABLE IF NOT EXISTS verification_questions (
    id          INTEGER PRIMARY KEY,
    claim_id    INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
    question    TEXT NOT NULL,
    answer      TEXT,
    asked_by    INTEGER REFERENCES admins(id),
    asked_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    answered_at DATETIME
);

CREATE TABLE IF NOT EXISTS messages (
    id           INTEGER PRIMARY KEY,
    recipient_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    sender_id    INTEGER REFERENCES admins(id),
    item_id      INTEGER REFERENCES items(id) ON DELETE SET NULL,
    content      TEXT NOT NULL,
    seen_at      DATETIME,
    reaction     TEXT CHECK (reaction IN ('thumbs_up', 'thumbs_down')),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id);

CREATE TABLE IF NOT EXISTS found_responses (
    id             INTEGER PRIMARY KEY,
    item_id        INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    finder_id      INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    message        TEXT NOT NULL,
    found_location TEXT NOT NULL,
    found_time     TEXT NOT NULL,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
