package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, registers "sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE COLLATE NOCASE,
	salt BLOB NOT NULL,
	verifier BLOB NOT NULL,
	session_key BLOB
);

CREATE TABLE IF NOT EXISTS characters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	race INTEGER NOT NULL,
	class INTEGER NOT NULL,
	gender INTEGER NOT NULL,
	skin INTEGER DEFAULT 0,
	face INTEGER DEFAULT 0,
	hair_style INTEGER DEFAULT 0,
	hair_color INTEGER DEFAULT 0,
	facial_hair INTEGER DEFAULT 0,
	level INTEGER DEFAULT 1,
	map INTEGER DEFAULT 0,
	x REAL NOT NULL,
	y REAL NOT NULL,
	z REAL NOT NULL,
	orientation REAL DEFAULT 0,
	FOREIGN KEY (account_id) REFERENCES accounts(id)
);
`

// SQLiteStore is a Store backed by a file-based SQLite database, schema
// and column layout mirroring the reference implementation's database.c.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) the database at path and
// ensures its schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetAccount(ctx context.Context, username string) (*Account, Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, salt, verifier, session_key FROM accounts WHERE username = ? COLLATE NOCASE`,
		username)

	var acc Account
	var salt, verifier, sessionKey []byte
	if err := row.Scan(&acc.ID, &acc.Username, &salt, &verifier, &sessionKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound, nil
		}
		return nil, BackendFailed, fmt.Errorf("store: get account: %w", err)
	}

	if len(salt) == SaltSize {
		copy(acc.Salt[:], salt)
	}
	if len(verifier) == VerifierSize {
		copy(acc.Verifier[:], verifier)
	}
	if len(sessionKey) == SessionKeySize {
		copy(acc.SessionKey[:], sessionKey)
		acc.HasSessionKey = true
	}
	return &acc, OK, nil
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, username string, salt [SaltSize]byte, verifier [VerifierSize]byte) (*Account, Result, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, salt, verifier) VALUES (?, ?, ?)`,
		username, salt[:], verifier[:])
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, AlreadyExists, nil
		}
		return nil, BackendFailed, fmt.Errorf("store: create account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, BackendFailed, fmt.Errorf("store: create account: %w", err)
	}

	return &Account{ID: id, Username: username, Salt: salt, Verifier: verifier}, OK, nil
}

func (s *SQLiteStore) UpdateSessionKey(ctx context.Context, accountID int64, key [SessionKeySize]byte) (Result, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET session_key = ? WHERE id = ?`, key[:], accountID)
	if err != nil {
		return BackendFailed, fmt.Errorf("store: update session key: %w", err)
	}
	return rowsAffectedResult(res)
}

const characterColumns = `id, account_id, name, race, class, gender, skin, face, hair_style, hair_color, facial_hair, level, map, x, y, z, orientation`

func scanCharacter(row interface{ Scan(...any) error }) (*Character, error) {
	var c Character
	if err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Race, &c.Class, &c.Gender,
		&c.Skin, &c.Face, &c.HairStyle, &c.HairColor, &c.FacialHair,
		&c.Level, &c.Map, &c.X, &c.Y, &c.Z, &c.O); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) GetCharacters(ctx context.Context, accountID int64) ([]*Character, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("store: get characters: %w", err)
	}
	defer rows.Close()

	var out []*Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("store: get characters: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetCharacter(ctx context.Context, characterID int64) (*Character, Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, characterID)
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound, nil
		}
		return nil, BackendFailed, fmt.Errorf("store: get character: %w", err)
	}
	return c, OK, nil
}

func (s *SQLiteStore) CreateCharacter(ctx context.Context, c *Character) (*Character, Result, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (account_id, name, race, class, gender, skin, face, hair_style, hair_color, facial_hair, level, map, x, y, z, orientation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.AccountID, c.Name, c.Race, c.Class, c.Gender, c.Skin, c.Face,
		c.HairStyle, c.HairColor, c.FacialHair, c.Level, c.Map, c.X, c.Y, c.Z, c.O)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return nil, AlreadyExists, nil
		}
		return nil, BackendFailed, fmt.Errorf("store: create character: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, BackendFailed, fmt.Errorf("store: create character: %w", err)
	}
	out := *c
	out.ID = id
	return &out, OK, nil
}

func (s *SQLiteStore) DeleteCharacter(ctx context.Context, characterID int64) (Result, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, characterID)
	if err != nil {
		return BackendFailed, fmt.Errorf("store: delete character: %w", err)
	}
	return rowsAffectedResult(res)
}

func (s *SQLiteStore) SetPosition(ctx context.Context, characterID int64, mapID uint32, x, y, z, o float32) (Result, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE characters SET map = ?, x = ?, y = ?, z = ?, orientation = ? WHERE id = ?`,
		mapID, x, y, z, o, characterID)
	if err != nil {
		return BackendFailed, fmt.Errorf("store: set position: %w", err)
	}
	return rowsAffectedResult(res)
}

func rowsAffectedResult(res sql.Result) (Result, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return BackendFailed, fmt.Errorf("store: %w", err)
	}
	if n == 0 {
		return NotFound, nil
	}
	return OK, nil
}

// isUniqueConstraintErr reports whether err came from a UNIQUE constraint
// violation. modernc.org/sqlite wraps the sqlite error code without a
// typed sentinel, so this matches on the driver's message text the same
// way the reference treats SQLITE_CONSTRAINT from sqlite3_step.
func isUniqueConstraintErr(err error) bool {
	return err != nil && containsFold(err.Error(), "UNIQUE constraint failed")
}

func containsFold(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if equalFold(s[i:i+len(substr)], substr) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
