package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

const snapshotColumns = "id, taken_at, command, version, source, time_zone"

// CreateSnapshot inserts a new snapshot stamped with the current time and
// returns its ID.
func (db *DB) CreateSnapshot(command, version, source, timeZone string) (int64, error) {
	return db.CreateSnapshotAt(time.Now(), command, version, source, timeZone)
}

// CreateSnapshotAt inserts a snapshot with an explicit timestamp.
func (db *DB) CreateSnapshotAt(takenAt time.Time, command, version, source, timeZone string) (int64, error) {
	result, err := db.conn.Exec(
		"INSERT INTO snapshots (taken_at, command, version, source, time_zone) VALUES (?, ?, ?, ?, ?)",
		takenAt.UTC().Format(time.RFC3339), command, version, source, timeZone,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetLatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) GetLatestSnapshot() (*Snapshot, error) {
	return db.GetSnapshotN(1)
}

// GetSnapshot returns a snapshot by ID, or nil if it does not exist.
func (db *DB) GetSnapshot(id int64) (*Snapshot, error) {
	row := db.conn.QueryRow("SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// GetSnapshotN returns the Nth most recent snapshot (1 = latest, 2 = previous, etc.).
func (db *DB) GetSnapshotN(n int) (*Snapshot, error) {
	if n < 1 {
		return nil, nil
	}
	row := db.conn.QueryRow(
		"SELECT "+snapshotColumns+" FROM snapshots ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanSnapshot(row)
}

// GetRecentSnapshots returns up to n snapshots, newest first.
func (db *DB) GetRecentSnapshots(n int) ([]Snapshot, error) {
	rows, err := db.conn.Query("SELECT "+snapshotColumns+" FROM snapshots ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt, &s.Command, &s.Version, &s.Source, &s.TimeZone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// InsertAggregateMetric inserts an aggregate metric for a snapshot.
func (db *DB) InsertAggregateMetric(snapshotID int64, name string, value float64, detail string) error {
	_, err := db.conn.Exec(
		"INSERT INTO aggregate_metrics (snapshot_id, metric_name, metric_value, detail) VALUES (?, ?, ?, ?)",
		snapshotID, name, value, detail,
	)
	return err
}

// InsertAggregateMetrics inserts every metric in name order.
func (db *DB) InsertAggregateMetrics(snapshotID int64, metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := db.InsertAggregateMetric(snapshotID, name, metrics[name], ""); err != nil {
			return fmt.Errorf("inserting metric %s: %w", name, err)
		}
	}
	return nil
}

// GetAggregateMetrics returns all aggregate metrics for a snapshot.
func (db *DB) GetAggregateMetrics(snapshotID int64) ([]AggregateMetric, error) {
	rows, err := db.conn.Query(
		"SELECT id, snapshot_id, metric_name, metric_value, detail FROM aggregate_metrics WHERE snapshot_id = ? ORDER BY id",
		snapshotID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var metrics []AggregateMetric
	for rows.Next() {
		var m AggregateMetric
		var detail sql.NullString
		if err := rows.Scan(&m.ID, &m.SnapshotID, &m.MetricName, &m.MetricValue, &detail); err != nil {
			return nil, err
		}
		m.Detail = detail.String
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// MetricHistory returns the value of one metric across the n most recent
// snapshots, oldest first. Snapshots without the metric are skipped.
func (db *DB) MetricHistory(name string, n int) ([]MetricPoint, error) {
	rows, err := db.conn.Query(`
		SELECT s.id, s.taken_at, m.metric_value
		FROM (SELECT id, taken_at FROM snapshots ORDER BY id DESC LIMIT ?) s
		JOIN aggregate_metrics m ON m.snapshot_id = s.id AND m.metric_name = ?
		ORDER BY s.id`,
		n, name,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []MetricPoint
	for rows.Next() {
		var p MetricPoint
		var takenAt string
		if err := rows.Scan(&p.SnapshotID, &takenAt, &p.Value); err != nil {
			return nil, err
		}
		p.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		points = append(points, p)
	}
	return points, rows.Err()
}
