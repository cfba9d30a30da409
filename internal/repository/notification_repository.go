package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

func (r queries) InsertNotification(ctx context.Context, n *model.Notification) error {
	id, err := lastInsertID(r.q.ExecContext(ctx,
		"INSERT INTO notifications (user_id, message, is_read, created_at) VALUES (?,?,?,?)",
		n.UserID, n.Message, n.IsRead, n.CreatedAt.UTC()))
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r queries) ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error) {
	out := []model.Notification{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		"SELECT id, user_id, message, is_read, created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	return out, err
}

// MarkNotificationRead flags a notification of userID as read; another
// user's notification is reported as missing.
func (r queries) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	return affected(r.q.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID))
}
