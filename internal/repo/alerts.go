package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

const alertColumns = `id, entity_id, entity_kind, severity, message, created_at, acknowledged, acknowledged_at`

// InsertAlert persists a new alert.
func (r *Repo) InsertAlert(ctx context.Context, a *models.Alert) error {
	var entityID sql.NullString
	if a.EntityID != "" {
		entityID = sql.NullString{String: a.EntityID, Valid: true}
	}
	var ackedAt sql.NullTime
	if a.AcknowledgedAt != nil {
		ackedAt = sql.NullTime{Time: *a.AcknowledgedAt, Valid: true}
	}
	_, err := r.store.DB().ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, entityID, string(a.EntityKind), string(a.Severity), a.Message,
		a.CreatedAt, boolToInt(a.Acknowledged), ackedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetAlert returns an alert by ID. Returns nil, nil if not found.
func (r *Repo) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	row := r.store.DB().QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// ListAlerts returns alerts ordered most recent first. When unackedOnly is
// set, acknowledged alerts are excluded. If limit <= 0, defaults to 100.
func (r *Repo) ListAlerts(ctx context.Context, unackedOnly bool, limit int) ([]*models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + alertColumns + ` FROM alerts`
	if unackedOnly {
		query += ` WHERE acknowledged = 0`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	rows, err := r.store.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marks an alert as acknowledged. Acknowledging an
// already-acknowledged alert is a no-op. Returns false if no row matched.
func (r *Repo) AcknowledgeAlert(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx, `
		UPDATE alerts SET acknowledged = 1, acknowledged_at = ?
		WHERE id = ? AND acknowledged = 0`,
		at, id,
	)
	if err != nil {
		return false, fmt.Errorf("acknowledge alert: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAlert removes an alert. Returns false if no row matched.
func (r *Repo) DeleteAlert(ctx context.Context, id string) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// PurgeAcknowledgedAlerts deletes acknowledged alerts created before the
// given time. Returns the number of rows deleted.
func (r *Repo) PurgeAcknowledgedAlerts(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.store.DB().ExecContext(ctx,
		`DELETE FROM alerts WHERE acknowledged = 1 AND created_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("purge acknowledged alerts: %w", err)
	}
	return res.RowsAffected()
}

// CountAlertsBySeverity returns alert counts per severity for alerts
// created at or after since.
func (r *Repo) CountAlertsBySeverity(ctx context.Context, since time.Time) (map[models.Severity]int, error) {
	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT severity, COUNT(*) FROM alerts WHERE created_at >= ? GROUP BY severity`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("count alerts by severity: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Severity]int)
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, fmt.Errorf("scan severity count: %w", err)
		}
		counts[models.Severity(sev)] = n
	}
	return counts, rows.Err()
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var entityID sql.NullString
	var kind, sev string
	var acked int
	var ackedAt sql.NullTime
	err := row.Scan(&a.ID, &entityID, &kind, &sev, &a.Message, &a.CreatedAt, &acked, &ackedAt)
	if err != nil {
		return nil, err
	}
	if entityID.Valid {
		a.EntityID = entityID.String
	}
	a.EntityKind = models.EntityKind(kind)
	a.Severity = models.Severity(sev)
	a.Acknowledged = acked != 0
	if ackedAt.Valid {
		t := ackedAt.Time
		a.AcknowledgedAt = &t
	}
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
