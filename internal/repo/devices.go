package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewatch-io/sitewatch/pkg/models"
)

const deviceColumns = `id, name, address, vendor, device_type, snmp_community, snmp_port,
	status, last_seen, metadata, created_at, updated_at`

// InsertDevice persists a new device.
func (r *Repo) InsertDevice(ctx context.Context, d *models.Device) error {
	meta, err := encodeMetadata(d.Metadata)
	if err != nil {
		return err
	}
	var lastSeen sql.NullTime
	if d.LastSeen != nil {
		lastSeen = sql.NullTime{Time: *d.LastSeen, Valid: true}
	}
	_, err = r.store.DB().ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Address, d.Vendor, d.DeviceType, d.SNMPCommunity, d.SNMPPort,
		string(d.Status), lastSeen, meta, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

// GetDevice returns a device by ID. Returns nil, nil if not found.
func (r *Repo) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	row := r.store.DB().QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

// ListDevices returns all devices ordered by name.
func (r *Repo) ListDevices(ctx context.Context) ([]*models.Device, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device row: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// DeleteDevice removes a device. Returns false if no row matched.
func (r *Repo) DeleteDevice(ctx context.Context, id string) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete device: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateDeviceStatus atomically records a probe outcome for a device:
// status, optional last_seen refresh, and a per-key metadata merge.
// Existing metadata keys not present in merge are preserved.
func (r *Repo) UpdateDeviceStatus(ctx context.Context, id string, status models.Status, lastSeen *time.Time, merge models.Metadata) error {
	return r.updateEntityStatus(ctx, "devices", id, status, lastSeen, merge)
}

// CountDevicesByStatus returns the number of devices in each status.
func (r *Repo) CountDevicesByStatus(ctx context.Context) (map[models.Status]int, error) {
	return r.countByStatus(ctx, "devices")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var d models.Device
	var status, meta string
	var lastSeen sql.NullTime
	err := row.Scan(
		&d.ID, &d.Name, &d.Address, &d.Vendor, &d.DeviceType, &d.SNMPCommunity, &d.SNMPPort,
		&status, &lastSeen, &meta, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = models.Status(status)
	if lastSeen.Valid {
		t := lastSeen.Time
		d.LastSeen = &t
	}
	d.Metadata, err = decodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// updateEntityStatus performs the shared atomic status+last_seen+metadata
// update for the devices and cameras tables.
func (r *Repo) updateEntityStatus(ctx context.Context, table, id string, status models.Status, lastSeen *time.Time, merge models.Metadata) error {
	return r.store.Tx(ctx, func(tx *sql.Tx) error {
		var metaJSON string
		err := tx.QueryRowContext(ctx,
			`SELECT metadata FROM `+table+` WHERE id = ?`, id,
		).Scan(&metaJSON)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s/%s: not found", table, id)
		}
		if err != nil {
			return fmt.Errorf("read metadata %s/%s: %w", table, id, err)
		}

		meta, err := decodeMetadata(metaJSON)
		if err != nil {
			return err
		}
		for k, v := range merge {
			meta[k] = v
		}
		merged, err := encodeMetadata(meta)
		if err != nil {
			return err
		}

		if lastSeen != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE `+table+` SET status = ?, last_seen = ?, metadata = ?, updated_at = ? WHERE id = ?`,
				string(status), *lastSeen, merged, time.Now().UTC(), id,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE `+table+` SET status = ?, metadata = ?, updated_at = ? WHERE id = ?`,
				string(status), merged, time.Now().UTC(), id,
			)
		}
		if err != nil {
			return fmt.Errorf("update status %s/%s: %w", table, id, err)
		}
		return nil
	})
}

func (r *Repo) countByStatus(ctx context.Context, table string) (map[models.Status]int, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}
