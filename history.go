package gifloop

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Outcome is how the playing of an image ended.
type Outcome int

const (
	// Completed means the image was shown for the full dwell time
	Completed Outcome = iota
	// OpenFailed means the image could not be opened and was skipped
	OpenFailed
	// StreamError means decoding failed part way through
	StreamError
	// Stopped means playback was interrupted
	Stopped
)

var outcomeNames = map[Outcome]string{
	Completed:   "completed",
	OpenFailed:  "open-failed",
	StreamError: "stream-error",
	Stopped:     "stopped",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Play records one attempt at playing an image.
type Play struct {
	// Session is the zero UUID if the image never opened
	Session  uuid.UUID
	Name     string
	Started  time.Time
	Duration time.Duration
	Frames   int
	Outcome  Outcome
	Err      error
}

// Recorder is notified every time the Player finishes with an image.
type Recorder interface {
	Record(Play) error
}

// HistoryDB is a Recorder persisting plays to an SQLite database.
type HistoryDB struct {
	db *sql.DB
}

var _ Recorder = new(HistoryDB)

// NewHistoryDB opens or creates the history database in file.
func NewHistoryDB(file string) (*HistoryDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS play (id INTEGER PRIMARY KEY NOT NULL, session TEXT, image_id INTEGER NOT NULL, started INTEGER NOT NULL, duration INTEGER NOT NULL, frames INTEGER NOT NULL, outcome INTEGER NOT NULL, error TEXT, FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryDB{
		db: db,
	}, nil
}

// Record stores p.
func (db *HistoryDB) Record(p Play) error {
	image, err := db.addImage(p.Name)
	if err != nil {
		return err
	}

	var session sql.NullString
	if p.Session != uuid.Nil {
		session.String = p.Session.String()
		session.Valid = true
	}

	var msg sql.NullString
	if p.Err != nil {
		msg.String = p.Err.Error()
		msg.Valid = true
	}

	if _, err := db.db.Exec("INSERT INTO play (session, image_id, started, duration, frames, outcome, error) VALUES (?, ?, ?, ?, ?, ?, ?)", session, image, p.Started.UnixMilli(), p.Duration.Milliseconds(), p.Frames, int(p.Outcome), msg); err != nil {
		return err
	}

	return nil
}

func (db *HistoryDB) addImage(name string) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM image WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO image (name) VALUES (?)", name)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Summary is the play history of one image.
type Summary struct {
	Name string
	// Plays counts plays that completed or were stopped
	Plays      int
	Failures   int
	Frames     int64
	LastPlayed time.Time
}

// Summary returns the history of every image ever played, ordered by name.
func (db *HistoryDB) Summary() ([]Summary, error) {
	rows, err := db.db.Query("SELECT i.name, SUM(CASE WHEN p.outcome IN (?, ?) THEN 1 ELSE 0 END), SUM(CASE WHEN p.outcome IN (?, ?) THEN 1 ELSE 0 END), SUM(p.frames), MAX(p.started) FROM play AS p JOIN image AS i ON p.image_id = i.id GROUP BY i.name ORDER BY i.name", int(Completed), int(Stopped), int(OpenFailed), int(StreamError))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var last int64
		if err := rows.Scan(&s.Name, &s.Plays, &s.Failures, &s.Frames, &last); err != nil {
			return nil, err
		}
		s.LastPlayed = time.UnixMilli(last)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Close closes the database.
func (db *HistoryDB) Close() error {
	return db.db.Close()
}
