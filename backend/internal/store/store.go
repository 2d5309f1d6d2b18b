// Package store persists the last good dashboard bundle of each slot so a
// stale view survives gateway restarts.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portal_dashboard/backend/internal/dashboard"
)

// Store is a dashboard.Store whose old entries can be purged.
type Store interface {
	dashboard.Store
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// Bundles are stored as JSON so empty collections round-trip as [] rather
// than null.
func encodeBundle(b dashboard.Bundle) ([]byte, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return payload, nil
}

func decodeBundle(payload []byte) (dashboard.Bundle, error) {
	var b dashboard.Bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return dashboard.Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}
