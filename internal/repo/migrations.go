package repo

import (
	"database/sql"

	"github.com/sitewatch-io/sitewatch/internal/store"
)

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create devices, cameras, and alerts tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS devices (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						address TEXT NOT NULL,
						vendor TEXT NOT NULL DEFAULT '',
						device_type TEXT NOT NULL DEFAULT '',
						snmp_community TEXT NOT NULL DEFAULT '',
						snmp_port INTEGER NOT NULL DEFAULT 161,
						status TEXT NOT NULL DEFAULT 'unknown',
						last_seen DATETIME,
						metadata TEXT NOT NULL DEFAULT '{}',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_devices_status ON devices(status)`,

					`CREATE TABLE IF NOT EXISTS cameras (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						address TEXT NOT NULL,
						rtsp_url TEXT NOT NULL,
						username TEXT NOT NULL DEFAULT '',
						password TEXT NOT NULL DEFAULT '',
						location TEXT NOT NULL DEFAULT '',
						status TEXT NOT NULL DEFAULT 'unknown',
						last_seen DATETIME,
						metadata TEXT NOT NULL DEFAULT '{}',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_cameras_status ON cameras(status)`,

					`CREATE TABLE IF NOT EXISTS alerts (
						id TEXT PRIMARY KEY,
						entity_id TEXT,
						entity_kind TEXT NOT NULL DEFAULT '',
						severity TEXT NOT NULL,
						message TEXT NOT NULL,
						created_at DATETIME NOT NULL,
						acknowledged INTEGER NOT NULL DEFAULT 0,
						acknowledged_at DATETIME
					)`,
					`CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_alerts_ack ON alerts(acknowledged, created_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
