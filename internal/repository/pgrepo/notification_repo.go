package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type NotificationRepository struct {
	db uow.DBTX
}

func NewNotificationRepository(db uow.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (n *NotificationRepository) Create(
	ctx context.Context,
	args repoargs.CreateNotification,
) (*domain.Notification, error) {
	row := n.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, message, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, user_id, message, type, read`,
		args.UserID, args.Message, args.Type,
	)
	var notification domain.Notification
	err := row.Scan(
		&notification.ID, &notification.CreatedAt, &notification.UserID,
		&notification.Message, &notification.Type, &notification.Read,
	)
	if err != nil {
		return nil, convertErr(err, "creating notification for user %d", args.UserID)
	}
	return &notification, nil
}
