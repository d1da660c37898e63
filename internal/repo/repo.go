// Package repo implements the SiteWatch entity repository on SQLite:
// monitored devices and cameras, their recorded status, and alert records.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sitewatch-io/sitewatch/internal/store"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// Repo provides persistence for monitored entities and alerts.
type Repo struct {
	store *store.Store
}

// New creates a repository backed by the given store and applies its
// schema migrations.
func New(ctx context.Context, st *store.Store) (*Repo, error) {
	if err := st.Migrate(ctx, migrations()); err != nil {
		return nil, fmt.Errorf("migrate repo schema: %w", err)
	}
	return &Repo{store: st}, nil
}

// encodeMetadata serializes a metadata map for storage. Nil maps are
// stored as empty JSON objects so merges always have a base.
func encodeMetadata(m models.Metadata) (string, error) {
	if m == nil {
		m = models.Metadata{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (models.Metadata, error) {
	if s == "" {
		return models.Metadata{}, nil
	}
	var m models.Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return m, nil
}
