package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"

	"github.com/turtacn/legajos-penal/internal/infrastructure/database/postgres"
	"github.com/turtacn/legajos-penal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/legajos-penal/pkg/errors"
)

// NotificationRepository resolves content hashes to notification dates from
// the registry kept by the court notification downloader.
type NotificationRepository struct {
	db  queryExecutor
	log logging.Logger
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(conn *postgres.Connection, log logging.Logger) *NotificationRepository {
	return &NotificationRepository{db: conn.Pool(), log: log}
}

// NotificationDate returns the first well-formed YYYY-MM-DD date registered
// for hash, or "" when there is none.
func (r *NotificationRepository) NotificationDate(ctx context.Context, hash string) (string, error) {
	if hash == "" {
		return "", nil
	}
	var date string
	err := r.db.QueryRow(ctx, `
		SELECT notified_on FROM notification_registry
		WHERE content_hash = $1 AND notified_on ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$'
		ORDER BY id LIMIT 1`, hash).Scan(&date)
	if stderrors.Is(err, pgx.ErrNoRows) {
		r.log.Debug("no notification registered", logging.String("hash", hash))
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to look up notification date")
	}
	return date, nil
}
