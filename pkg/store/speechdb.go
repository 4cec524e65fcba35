// CLAUDE:SUMMARY SQLite persistence of attributed speeches, replaced per session in one transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/floorspeech/pkg/match"
)

// SpeechRow is one persisted attribution.
type SpeechRow struct {
	SpeechID        string            `json:"speech_id"`
	Session         int               `json:"congress_number"`
	IssueDate       string            `json:"issue_date"`
	SourceURL       string            `json:"source_url"`
	Speaker         string            `json:"speaker"`
	Speech          string            `json:"speech"`
	LegislatorName  string            `json:"name"`
	LegislatorState string            `json:"legislator_state"`
	Bioguide        string            `json:"bioguide,omitempty"`
	MatchedBy       string            `json:"matched_by"`
	Score           int               `json:"similarity_score"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// SpeechDB manages the matched_speeches SQLite table.
type SpeechDB struct {
	db *sql.DB
}

// OpenSpeechDB opens (or creates) the database at path and ensures the
// matched_speeches table exists.
func OpenSpeechDB(path string) (*SpeechDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open speech db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS matched_speeches (
		speech_id        TEXT PRIMARY KEY,
		session          INTEGER NOT NULL,
		issue_date       TEXT NOT NULL,
		source_url       TEXT NOT NULL,
		speaker          TEXT NOT NULL,
		speech           TEXT NOT NULL,
		legislator_name  TEXT NOT NULL,
		legislator_state TEXT NOT NULL,
		bioguide         TEXT NOT NULL DEFAULT '',
		matched_by       TEXT NOT NULL,
		similarity_score INTEGER NOT NULL,
		extra            TEXT NOT NULL DEFAULT '{}',
		saved_at         INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create matched_speeches table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS matched_speeches_session
		ON matched_speeches(session, issue_date)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create matched_speeches index: %w", err)
	}
	return &SpeechDB{db: db}, nil
}

// Close closes the SQLite connection.
func (s *SpeechDB) Close() error {
	return s.db.Close()
}

// SaveRun replaces every row of session with rows, atomically.
func (s *SpeechDB) SaveRun(ctx context.Context, session int, rows []match.Matched) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matched_speeches WHERE session = ?`, session); err != nil {
		return fmt.Errorf("clear session %d: %w", session, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO matched_speeches
		(speech_id, session, issue_date, source_url, speaker, speech, legislator_name,
		 legislator_state, bioguide, matched_by, similarity_score, extra, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, m := range rows {
		if m.Session != session {
			return fmt.Errorf("row %s belongs to session %d, not %d", m.Speech.ID, m.Session, session)
		}
		extra, err := json.Marshal(m.Legislator.Extra)
		if err != nil {
			return fmt.Errorf("encode extra for %s: %w", m.Speech.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			m.Speech.ID, session, formatDate(m.Speech.IssueDate), m.Speech.SourceURL,
			m.Speech.Speaker, m.Speech.Body, m.Legislator.Name, m.Legislator.State,
			m.Legislator.Extra["bioguide"], m.MatchedBy, m.Score, string(extra), now,
		); err != nil {
			return fmt.Errorf("insert %s: %w", m.Speech.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session %d: %w", session, err)
	}
	return nil
}

// SaveAll splits rows by session and saves each session.
func (s *SpeechDB) SaveAll(ctx context.Context, rows []match.Matched) error {
	bySession := make(map[int][]match.Matched)
	for _, m := range rows {
		bySession[m.Session] = append(bySession[m.Session], m)
	}
	for session, rs := range bySession {
		if err := s.SaveRun(ctx, session, rs); err != nil {
			return err
		}
	}
	return nil
}

// CountBySession returns the number of stored rows per session.
func (s *SpeechDB) CountBySession(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session, COUNT(*) FROM matched_speeches GROUP BY session`)
	if err != nil {
		return nil, fmt.Errorf("count by session: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var session, n int
		if err := rows.Scan(&session, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[session] = n
	}
	return out, rows.Err()
}

// ListSession returns up to limit rows of a session ordered by issue date.
// A limit of zero or less returns every row.
func (s *SpeechDB) ListSession(ctx context.Context, session, limit int) ([]SpeechRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT speech_id, session, issue_date, source_url, speaker, speech,
		legislator_name, legislator_state, bioguide, matched_by, similarity_score, extra
		FROM matched_speeches WHERE session = ? ORDER BY issue_date, source_url, speech_id LIMIT ?`, session, limit)
	if err != nil {
		return nil, fmt.Errorf("list session %d: %w", session, err)
	}
	defer rows.Close()

	var out []SpeechRow
	for rows.Next() {
		var r SpeechRow
		var extra string
		if err := rows.Scan(&r.SpeechID, &r.Session, &r.IssueDate, &r.SourceURL, &r.Speaker, &r.Speech,
			&r.LegislatorName, &r.LegislatorState, &r.Bioguide, &r.MatchedBy, &r.Score, &extra); err != nil {
			return nil, fmt.Errorf("scan speech: %w", err)
		}
		if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
			return nil, fmt.Errorf("decode extra for %s: %w", r.SpeechID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
