package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

const notifyTimeout = 5 * time.Second

// Notifier is the fire-and-forget side channel for notifications and
// real-time broadcasts. Dispatch runs on background goroutines outside
// the mutating transaction: a failed write here is logged and dropped,
// never turned into a failure of the committed state transition.
type Notifier struct {
	notifRepo   NotificationRepository
	broadcaster Broadcaster
	logger      *logrus.Logger
	wg          sync.WaitGroup
}

func NewNotifier(u uow.UOW, b Broadcaster, l *logrus.Logger) (*Notifier, error) {
	notifRepo, err := uow.GetRepositoryAs[NotificationRepository](
		u, uow.RepositoryName(repoargs.NotificationRepoName))
	if err != nil {
		return nil, err
	}
	return &Notifier{
		notifRepo:   notifRepo,
		broadcaster: b,
		logger:      l,
	}, nil
}

func (n *Notifier) Notify(userID int64, message string, tag domain.NotificationType) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		_, err := n.notifRepo.Create(ctx, repoargs.CreateNotification{
			UserID:  userID,
			Message: message,
			Type:    tag,
		})
		if err != nil {
			n.logger.WithError(err).WithField("UserID", userID).Warn("notification write failed")
		}
	}()
}

func (n *Notifier) Broadcast(event string, payload any) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		data, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			n.logger.WithError(marshalErr).WithField("Event", event).Warn("broadcast payload marshal failed")
			return
		}
		if err := n.broadcaster.Publish(event, data); err != nil {
			n.logger.WithError(err).WithField("Event", event).Warn("broadcast failed")
		}
	}()
}

// Wait blocks until all in-flight dispatches have finished. Used on
// shutdown and in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
