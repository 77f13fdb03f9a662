// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/signtutor/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const settingsKey = "settings"

// Store wraps SQLite access for practice sessions, attempts and settings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Writes come from the sink goroutine and the UI at the same time.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			student_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id INTEGER NOT NULL,
			student_id TEXT NOT NULL,
			target_sign TEXT NOT NULL,
			predicted_sign TEXT NOT NULL,
			confidence REAL NOT NULL,
			is_correct INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			confidence REAL NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_student ON attempts(student_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_target ON attempts(target_sign);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}

// OpenSession starts a practice session for studentID.
func (s *Store) OpenSession(ctx context.Context, studentID string, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (student_id, started_at) VALUES (?, ?)`,
		studentID, formatTime(startedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CloseSession stamps the end time of a session.
func (s *Store) CloseSession(ctx context.Context, id int64, endedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, formatTime(endedAt), id)
	return err
}

// InsertAttempt stores one reconciled attempt.
func (s *Store) InsertAttempt(ctx context.Context, rec model.AttemptRecord) (int64, error) {
	correct := 0
	if rec.IsCorrect {
		correct = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (session_id, student_id, target_sign, predicted_sign, confidence, is_correct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.StudentID,
		string(rec.TargetSign),
		string(rec.PredictedSign),
		rec.Confidence,
		correct,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertPrediction records an answer of the recognition endpoint.
func (s *Store) InsertPrediction(ctx context.Context, ev model.PredictionEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO predictions (label, confidence, created_at) VALUES (?, ?, ?)`,
		string(ev.Label), ev.Confidence, formatTime(ev.CreatedAt))
	return err
}

// ListAttempts returns a session's attempts in insertion order.
func (s *Store) ListAttempts(ctx context.Context, sessionID int64) ([]model.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, student_id, target_sign, predicted_sign, confidence, is_correct, created_at
		 FROM attempts WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.AttemptRecord
	for rows.Next() {
		var rec model.AttemptRecord
		var target, predicted, created string
		var correct int
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &target, &predicted, &rec.Confidence, &correct, &created); err != nil {
			return nil, err
		}
		parsed, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		rec.TargetSign = model.Sign(target)
		rec.PredictedSign = model.Sign(predicted)
		rec.IsCorrect = correct == 1
		rec.CreatedAt = parsed
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func attemptFilter(studentID string, sign model.Sign, since *time.Time) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if studentID != "" {
		clauses = append(clauses, "a.student_id = ?")
		args = append(args, studentID)
	}
	if sign != "" {
		clauses = append(clauses, "a.target_sign = ?")
		args = append(args, string(sign))
	}
	if since != nil {
		clauses = append(clauses, "a.created_at >= ?")
		args = append(args, formatTime(*since))
	}
	return strings.Join(clauses, " AND "), args
}

// ListSessions returns per-session attempt aggregates filtered by stats config,
// oldest first. Sessions without matching attempts are omitted.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	where, args := attemptFilter(cfg.StudentID, cfg.Sign, cfg.Since)
	query := fmt.Sprintf(`SELECT a.session_id, MAX(a.student_id), MAX(a.created_at),
		COUNT(*), SUM(a.is_correct), SUM(a.confidence)
		FROM attempts a
		WHERE %s
		GROUP BY a.session_id
		ORDER BY MAX(a.created_at) ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.StudentID, &endedAt, &agg.Attempts, &agg.Correct, &agg.ConfidenceSum); err != nil {
			return nil, err
		}
		parsed, err := parseTime(endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SignAggregates aggregates attempts per target sign across sessions.
func (s *Store) SignAggregates(ctx context.Context, sessionIDs []int64) ([]model.SignStats, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders, args := int64Placeholders(sessionIDs)
	query := fmt.Sprintf(`SELECT target_sign, COUNT(*), SUM(is_correct), SUM(confidence), COUNT(DISTINCT student_id)
		FROM attempts
		WHERE session_id IN (%s)
		GROUP BY target_sign`, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SignStats
	for rows.Next() {
		var sign string
		var confSum float64
		var st model.SignStats
		if err := rows.Scan(&sign, &st.TotalAttempts, &st.SuccessfulAttempts, &confSum, &st.StudentCount); err != nil {
			return nil, err
		}
		st.Sign = model.Sign(sign)
		finishSignStats(&st, confSum)
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSignStatsForSessions returns per-session aggregates for selected signs.
func (s *Store) ListSignStatsForSessions(ctx context.Context, sessionIDs []int64, signList []model.Sign) (map[int64]map[model.Sign]model.SignStats, error) {
	if len(sessionIDs) == 0 || len(signList) == 0 {
		return map[int64]map[model.Sign]model.SignStats{}, nil
	}
	idPlaceholders, args := int64Placeholders(sessionIDs)
	signPlaceholders := make([]string, len(signList))
	for i, sign := range signList {
		signPlaceholders[i] = "?"
		args = append(args, string(sign))
	}
	query := fmt.Sprintf(`SELECT session_id, target_sign, COUNT(*), SUM(is_correct), SUM(confidence)
		FROM attempts
		WHERE session_id IN (%s) AND target_sign IN (%s)
		GROUP BY session_id, target_sign`, idPlaceholders, strings.Join(signPlaceholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[int64]map[model.Sign]model.SignStats{}
	for rows.Next() {
		var sessionID int64
		var sign string
		var confSum float64
		var st model.SignStats
		if err := rows.Scan(&sessionID, &sign, &st.TotalAttempts, &st.SuccessfulAttempts, &confSum); err != nil {
			return nil, err
		}
		st.Sign = model.Sign(sign)
		finishSignStats(&st, confSum)
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[model.Sign]model.SignStats{}
		}
		result[sessionID][st.Sign] = st
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DashboardMetrics counts recognition answers overall and per label.
func (s *Store) DashboardMetrics(ctx context.Context) (model.DashboardMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return model.DashboardMetrics{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	metrics := model.DashboardMetrics{UsageByLabel: map[model.Sign]int{}}
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return model.DashboardMetrics{}, err
		}
		metrics.UsageByLabel[model.Sign(label)] = count
		metrics.TotalPredictions += count
	}
	if err := rows.Err(); err != nil {
		return model.DashboardMetrics{}, err
	}
	return metrics, nil
}

// ListStudents returns every student that has a session, ordered by id.
func (s *Store) ListStudents(ctx context.Context) ([]model.StudentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT student_id FROM sessions ORDER BY student_id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.StudentSummary
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, model.StudentSummary{ID: id, Name: id})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StudentStats aggregates every attempt of a student. Accuracy is a percentage.
func (s *Store) StudentStats(ctx context.Context, studentID string) (model.StudentStats, error) {
	out := model.StudentStats{StudentID: studentID, SignPerformance: map[model.Sign]model.SignPerformance{}}
	rows, err := s.db.QueryContext(ctx,
		`SELECT target_sign, COUNT(*), SUM(is_correct), SUM(confidence)
		 FROM attempts WHERE student_id = ? GROUP BY target_sign`, studentID)
	if err != nil {
		return out, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var confSum float64
	for rows.Next() {
		var sign string
		var perf model.SignPerformance
		var signConf float64
		if err := rows.Scan(&sign, &perf.Total, &perf.Correct, &signConf); err != nil {
			return out, err
		}
		out.SignPerformance[model.Sign(sign)] = perf
		out.TotalAttempts += perf.Total
		out.CorrectPredictions += perf.Correct
		confSum += signConf
	}
	if err := rows.Err(); err != nil {
		return out, err
	}
	if out.TotalAttempts > 0 {
		out.Accuracy = float64(out.CorrectPredictions) / float64(out.TotalAttempts) * 100
		out.AverageConfidence = confSum / float64(out.TotalAttempts)
	}
	return out, nil
}

// SignStats aggregates attempts at sign, optionally for one student.
// Success rate is a fraction.
func (s *Store) SignStats(ctx context.Context, sign model.Sign, studentID string) (model.SignStats, error) {
	where, args := attemptFilter(studentID, sign, nil)
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(a.is_correct), 0), COALESCE(SUM(a.confidence), 0), COUNT(DISTINCT a.student_id)
		FROM attempts a WHERE %s`, where)
	st := model.SignStats{Sign: sign, StudentID: studentID}
	var confSum float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&st.TotalAttempts, &st.SuccessfulAttempts, &confSum, &st.StudentCount); err != nil {
		return st, err
	}
	finishSignStats(&st, confSum)
	return st, nil
}

func finishSignStats(st *model.SignStats, confSum float64) {
	if st.TotalAttempts == 0 {
		return
	}
	st.SuccessRate = float64(st.SuccessfulAttempts) / float64(st.TotalAttempts)
	st.AverageConfidence = confSum / float64(st.TotalAttempts)
}

// LoadSettings returns the saved settings, or the defaults when none are saved.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	settings := model.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the saved settings.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingsKey, string(raw))
	return err
}

// ResetSettings removes saved settings so defaults apply again.
func (s *Store) ResetSettings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, settingsKey)
	return err
}

func int64Placeholders(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}
