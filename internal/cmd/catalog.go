package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hetulpatel/arbscanner/internal/kalshi"
	"github.com/hetulpatel/arbscanner/internal/models"
	"github.com/hetulpatel/arbscanner/internal/polymarket"
)

const catalogStampLayout = "20060102T150405Z"

// decodeRaw accepts a bare JSON array of raw markets or an API response
// object carrying them under "markets".
func decodeRaw[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var envelope struct {
			Markets []T `json:"markets"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, err
		}
		return envelope.Markets, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// readCatalogFile loads raw venue markets from path and projects them.
func readCatalogFile(path string, venue models.Venue) ([]models.Market, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s catalog: %w", venue, err)
	}
	switch venue {
	case models.VenuePolymarket:
		raw, err := decodeRaw[polymarket.Market](data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return polymarket.ProjectAll(raw), nil
	case models.VenueKalshi:
		raw, err := decodeRaw[kalshi.Market](data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return kalshi.ProjectAll(raw), nil
	default:
		return nil, fmt.Errorf("unknown venue %q", venue)
	}
}

// writeCatalogFile dumps raw markets as an indented array that
// readCatalogFile can load back.
func writeCatalogFile(dir string, venue models.Venue, raw any, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create catalog dir: %w", err)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s catalog: %w", venue, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", venue, at.UTC().Format(catalogStampLayout)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s catalog: %w", venue, err)
	}
	return path, nil
}
