package pgstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/models"
)

// AppendOrderLog is insert-only. Entries are never updated or deleted.
func (s *Storage) AppendOrderLog(ctx context.Context, e *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO order_logs (order_no, activity_type, description, actor_email, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at
`, e.OrderNo, e.ActivityType, e.Description, e.ActorEmail, time.Now().UTC()).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert order log")
	}
	return e, nil
}

func (s *Storage) ListOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, order_no, activity_type, description, actor_email, created_at
FROM order_logs
WHERE order_no = $1
ORDER BY created_at DESC, id DESC
`, orderNo)
	if err != nil {
		return nil, errors.Wrap(err, "select order logs")
	}
	defer rows.Close()

	out := []*models.ActivityLogEntry{}
	for rows.Next() {
		var e models.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.OrderNo, &e.ActivityType, &e.Description, &e.ActorEmail, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order log")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
