package repoargs

import "github.com/fsdevblog/groph-delivery/internal/domain"

type CreateNotification struct {
	UserID  int64
	Message string
	Type    domain.NotificationType
}
