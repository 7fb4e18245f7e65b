package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"marketViewport/internal/viewport"
)

var ErrNotFound = errors.New("viewport not found")

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
}

// ChartView is everything a chat needs to redraw its chart.
type ChartView struct {
	ChatID     int64
	Symbols    []string
	Timeframe  string
	State      viewport.State
	Normalized bool
	LogScale   bool
	UpdatedAt  time.Time
}

type Store struct{ db DB }

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS viewports(
		chat_id INTEGER PRIMARY KEY,
		symbols TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		x_zoom REAL NOT NULL DEFAULT 0,
		x_pan REAL NOT NULL DEFAULT 0,
		y_zoom REAL NOT NULL DEFAULT 0,
		y_pan REAL NOT NULL DEFAULT 0,
		normalized INTEGER NOT NULL DEFAULT 0,
		log_scale INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		return err
	}
	// databases created before log_scale existed
	if _, err := db.Exec(`ALTER TABLE viewports ADD COLUMN log_scale INTEGER NOT NULL DEFAULT 0`); err != nil &&
		!strings.Contains(err.Error(), "duplicate column") {
		return err
	}
	return nil
}

func NewStore(db DB) *Store { return &Store{db: db} }

// SaveViewport upserts the chat's view. The state is clamped before writing.
func (s *Store) SaveViewport(v ChartView) error {
	st := v.State.Clamp()
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO viewports(chat_id,symbols,timeframe,x_zoom,x_pan,y_zoom,y_pan,normalized,log_scale,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(chat_id) DO UPDATE SET
			symbols=excluded.symbols, timeframe=excluded.timeframe,
			x_zoom=excluded.x_zoom, x_pan=excluded.x_pan,
			y_zoom=excluded.y_zoom, y_pan=excluded.y_pan,
			normalized=excluded.normalized, log_scale=excluded.log_scale,
			updated_at=excluded.updated_at`,
		v.ChatID, strings.Join(v.Symbols, " "), v.Timeframe,
		st.XZoom, st.XPan, st.YZoom, st.YPan, v.Normalized, v.LogScale, v.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save viewport %d: %w", v.ChatID, err)
	}
	return nil
}

func (s *Store) LoadViewport(chatID int64) (ChartView, error) {
	var (
		v       = ChartView{ChatID: chatID}
		symbols string
		updated int64
	)
	err := s.db.QueryRow(`SELECT symbols,timeframe,x_zoom,x_pan,y_zoom,y_pan,normalized,log_scale,updated_at
		FROM viewports WHERE chat_id=?`, chatID).
		Scan(&symbols, &v.Timeframe, &v.State.XZoom, &v.State.XPan, &v.State.YZoom, &v.State.YPan,
			&v.Normalized, &v.LogScale, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return ChartView{}, ErrNotFound
	}
	if err != nil {
		return ChartView{}, fmt.Errorf("load viewport %d: %w", chatID, err)
	}
	v.Symbols = strings.Fields(symbols)
	v.UpdatedAt = time.Unix(updated, 0)
	return v, nil
}

// DeleteViewport forgets the chat's view. Deleting a missing view is not an error.
func (s *Store) DeleteViewport(chatID int64) error {
	if _, err := s.db.Exec(`DELETE FROM viewports WHERE chat_id=?`, chatID); err != nil {
		return fmt.Errorf("delete viewport %d: %w", chatID, err)
	}
	return nil
}

// RecentViewports lists views updated at or after since, newest first.
func (s *Store) RecentViewports(since time.Time) ([]ChartView, error) {
	rows, err := s.db.Query(`SELECT chat_id,symbols,timeframe,x_zoom,x_pan,y_zoom,y_pan,normalized,log_scale,updated_at
		FROM viewports WHERE updated_at>=? ORDER BY updated_at DESC`, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChartView
	for rows.Next() {
		var (
			v       ChartView
			symbols string
			updated int64
		)
		if err := rows.Scan(&v.ChatID, &symbols, &v.Timeframe, &v.State.XZoom, &v.State.XPan,
			&v.State.YZoom, &v.State.YPan, &v.Normalized, &v.LogScale, &updated); err != nil {
			return nil, err
		}
		v.Symbols = strings.Fields(symbols)
		v.UpdatedAt = time.Unix(updated, 0)
		out = append(out, v)
	}
	return out, rows.Err()
}
