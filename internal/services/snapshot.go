package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	applog "gastos/internal/log"
	"gastos/internal/storage"
)

// fetchWithSnapshot runs fetch and persists the result as the tenant's
// latest snapshot of the given kind. When fetch fails it falls back to
// the stored snapshot; stale reports whether the fallback was used.
func fetchWithSnapshot[T any](ctx context.Context, store *storage.Store, tenantID int64, kind string, fetch func(context.Context) (T, error)) (value T, fetchedAt time.Time, stale bool, err error) {
	value, err = fetch(ctx)
	if err == nil {
		if store != nil {
			if payload, merr := json.Marshal(value); merr != nil {
				slog.ErrorContext(ctx, "Failed to marshal snapshot", "kind", kind, "error", merr)
			} else if serr := store.Save(ctx, tenantID, kind, payload); serr != nil {
				slog.ErrorContext(ctx, "Failed to save snapshot", "kind", kind, "error", serr)
			}
		}
		return value, time.Now(), false, nil
	}

	if store == nil {
		var zero T
		return zero, time.Time{}, false, err
	}

	payload, at, lerr := store.Latest(ctx, tenantID, kind)
	if lerr != nil {
		var zero T
		return zero, time.Time{}, false, err
	}

	var cached T
	if uerr := json.Unmarshal(payload, &cached); uerr != nil {
		slog.ErrorContext(ctx, "Failed to decode stored snapshot", "kind", kind, "error", uerr)
		var zero T
		return zero, time.Time{}, false, err
	}

	slog.WarnContext(ctx, "Serving stale snapshot",
		"kind", kind,
		applog.FieldTenantID, tenantID,
		applog.FieldSnapshotAge, time.Since(at).String(),
		applog.FieldError, err)

	return cached, at, true, nil
}
