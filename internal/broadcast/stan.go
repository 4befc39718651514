package broadcast

import (
	"fmt"

	stan "github.com/nats-io/stan.go"
)

// StanBroadcaster publishes dashboard events over NATS Streaming. Event
// names map 1:1 to subjects; observer dashboards subscribe to the ones
// they render.
type StanBroadcaster struct {
	sc stan.Conn
}

func Connect(clusterID, clientID, natsURL string) (*StanBroadcaster, error) {
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		return nil, fmt.Errorf("stan connect: %w", err)
	}
	return &StanBroadcaster{sc: sc}, nil
}

func (b *StanBroadcaster) Publish(event string, data []byte) error {
	if err := b.sc.Publish(event, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", event, err)
	}
	return nil
}

func (b *StanBroadcaster) Close() error {
	return b.sc.Close() //nolint:wrapcheck
}
