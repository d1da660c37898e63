package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

const cameraColumns = `id, name, address, rtsp_url, username, password, location,
	status, last_seen, metadata, created_at, updated_at`

// InsertCamera persists a new camera.
func (r *Repo) InsertCamera(ctx context.Context, c *models.Camera) error {
	meta, err := encodeMetadata(c.Metadata)
	if err != nil {
		return err
	}
	var lastSeen sql.NullTime
	if c.LastSeen != nil {
		lastSeen = sql.NullTime{Time: *c.LastSeen, Valid: true}
	}
	_, err = r.store.DB().ExecContext(ctx, `
		INSERT INTO cameras (`+cameraColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Address, c.RTSPURL, c.Username, c.Password, c.Location,
		string(c.Status), lastSeen, meta, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert camera: %w", err)
	}
	return nil
}

// GetCamera returns a camera by ID. Returns nil, nil if not found.
func (r *Repo) GetCamera(ctx context.Context, id string) (*models.Camera, error) {
	row := r.store.DB().QueryRowContext(ctx,
		`SELECT `+cameraColumns+` FROM cameras WHERE id = ?`, id)
	c, err := scanCamera(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get camera: %w", err)
	}
	return c, nil
}

// ListCameras returns all cameras ordered by name.
func (r *Repo) ListCameras(ctx context.Context) ([]*models.Camera, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT `+cameraColumns+` FROM cameras ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []*models.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera row: %w", err)
		}
		cameras = append(cameras, c)
	}
	return cameras, rows.Err()
}

// DeleteCamera removes a camera. Returns false if no row matched.
func (r *Repo) DeleteCamera(ctx context.Context, id string) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx, `DELETE FROM cameras WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete camera: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateCameraStatus atomically records a probe outcome for a camera:
// status, optional last_seen refresh, and a per-key metadata merge.
func (r *Repo) UpdateCameraStatus(ctx context.Context, id string, status models.Status, lastSeen *time.Time, merge models.Metadata) error {
	return r.updateEntityStatus(ctx, "cameras", id, status, lastSeen, merge)
}

// CountCamerasByStatus returns the number of cameras in each status.
func (r *Repo) CountCamerasByStatus(ctx context.Context) (map[models.Status]int, error) {
	return r.countByStatus(ctx, "cameras")
}

func scanCamera(row rowScanner) (*models.Camera, error) {
	var c models.Camera
	var status, meta string
	var lastSeen sql.NullTime
	err := row.Scan(
		&c.ID, &c.Name, &c.Address, &c.RTSPURL, &c.Username, &c.Password, &c.Location,
		&status, &lastSeen, &meta, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = models.Status(status)
	if lastSeen.Valid {
		t := lastSeen.Time
		c.LastSeen = &t
	}
	c.Metadata, err = decodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
