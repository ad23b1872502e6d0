package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

// InsertFocusScores stores session scores for a snapshot in one transaction.
func (db *DB) InsertFocusScores(snapshotID int64, scores []analyzer.SessionScore) error {
	return db.inTx(func(tx *sql.Tx) error {
		for _, s := range scores {
			if _, err := tx.Exec(
				`INSERT INTO focus_scores
				(snapshot_id, session_id, started_at, ended_at, score, distraction_count, context_switch_penalty)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				snapshotID, s.SessionID,
				s.Start.UTC().Format(time.RFC3339), s.End.UTC().Format(time.RFC3339),
				s.FocusQualityScore, s.DistractionCount, s.ContextSwitchPenalty,
			); err != nil {
				return fmt.Errorf("inserting focus score %s: %w", s.SessionID, err)
			}
		}
		return nil
	})
}

// GetFocusScores returns the stored session scores of a snapshot in start order.
func (db *DB) GetFocusScores(snapshotID int64) ([]FocusScoreRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, session_id, started_at, ended_at, score, distraction_count, context_switch_penalty
		 FROM focus_scores WHERE snapshot_id = ? ORDER BY started_at, id`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FocusScoreRow
	for rows.Next() {
		var r FocusScoreRow
		var start, end string
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.SessionID, &start, &end,
			&r.Score, &r.DistractionCount, &r.ContextSwitchPenalty); err != nil {
			return nil, err
		}
		r.Start, _ = time.Parse(time.RFC3339, start)
		r.End, _ = time.Parse(time.RFC3339, end)
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertAnomalies stores flagged days for a snapshot in one transaction.
func (db *DB) InsertAnomalies(snapshotID int64, anomalies []analyzer.Anomaly) error {
	return db.inTx(func(tx *sql.Tx) error {
		for _, a := range anomalies {
			if _, err := tx.Exec(
				`INSERT INTO anomalies
				(snapshot_id, date, total_seconds, anomaly_score, deviation_percent, z_score, explanation)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				snapshotID, a.Date, a.TotalSeconds, a.AnomalyScore, a.DeviationPercent, a.ZScore, a.Explanation,
			); err != nil {
				return fmt.Errorf("inserting anomaly %s: %w", a.Date, err)
			}
		}
		return nil
	})
}

// GetAnomalies returns the stored anomalies of a snapshot, highest score first.
func (db *DB) GetAnomalies(snapshotID int64) ([]AnomalyRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, snapshot_id, date, total_seconds, anomaly_score, deviation_percent, z_score, explanation
		 FROM anomalies WHERE snapshot_id = ? ORDER BY anomaly_score DESC, id`,
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []AnomalyRow
	for rows.Next() {
		var r AnomalyRow
		var explanation sql.NullString
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.Date, &r.TotalSeconds,
			&r.AnomalyScore, &r.DeviationPercent, &r.ZScore, &explanation); err != nil {
			return nil, err
		}
		r.Explanation = explanation.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertCategoryTrends stores category trends for a snapshot in one transaction.
func (db *DB) InsertCategoryTrends(snapshotID int64, trends []analyzer.TrendingCategory) error {
	return db.inTx(func(tx *sql.Tx) error {
		for _, c := range trends {
			if _, err := tx.Exec(
				"INSERT INTO category_trends (snapshot_id, category, trend, slope_per_day) VALUES (?, ?, ?, ?)",
				snapshotID, c.Category, string(c.Trend), c.SlopePerDay,
			); err != nil {
				return fmt.Errorf("inserting trend %s: %w", c.Category, err)
			}
		}
		return nil
	})
}

// GetCategoryTrends returns the stored trends of a snapshot in insertion order.
func (db *DB) GetCategoryTrends(snapshotID int64) ([]CategoryTrendRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, category, trend, slope_per_day FROM category_trends WHERE snapshot_id = ? ORDER BY id",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []CategoryTrendRow
	for rows.Next() {
		var r CategoryTrendRow
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.Category, &r.Trend, &r.SlopePerDay); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertArchive records where a snapshot's timeline was archived.
func (db *DB) InsertArchive(snapshotID int64, path string, bytes int64, events int) error {
	_, err := db.conn.Exec(
		"INSERT INTO archives (snapshot_id, path, bytes, events) VALUES (?, ?, ?, ?)",
		snapshotID, path, bytes, events,
	)
	return err
}

// GetArchive returns the archive record of a snapshot, or nil if none exists.
func (db *DB) GetArchive(snapshotID int64) (*ArchiveRow, error) {
	var r ArchiveRow
	err := db.conn.QueryRow(
		"SELECT id, snapshot_id, path, bytes, events FROM archives WHERE snapshot_id = ? ORDER BY id DESC LIMIT 1",
		snapshotID,
	).Scan(&r.ID, &r.SnapshotID, &r.Path, &r.Bytes, &r.Events)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
