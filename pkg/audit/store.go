package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// postgres driver for OpenStore
	_ "github.com/lib/pq"
)

const insertMessage = `INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Store persists audit records to the messages table of the ledger
// database.
type Store struct {
	db *sql.DB
}

// OpenStore connects to the audit database at dbURL. An empty dbURL returns
// a nil store and no error.
func OpenStore(dbURL string) (*Store, error) {
	if dbURL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("audit: open store: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an open connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts one record.
func (s *Store) Save(r Record) error {
	if s.db == nil {
		return nil
	}
	sdata, err := json.Marshal(r.StructuredData)
	if err != nil {
		return fmt.Errorf("audit: encode structured data: %w", err)
	}
	_, err = s.db.Exec(insertMessage,
		r.Facility, int(r.Severity), r.Time, r.Hostname, AppName, r.ProcID, r.MsgID, sdata, r.Message)
	return err
}
