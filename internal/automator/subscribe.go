package automator

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/automator/internal/hooks"
	"github.com/MrSnakeDoc/automator/internal/logger"
)

// QueueObserver is told about every queue decision.
type QueueObserver func(integrationID, endpointID string, queued bool)

// SubscribeQueues fans post status changes out to every queue endpoint of
// the connectors. Endpoints registered after the call are picked up too.
func SubscribeQueues(bus *hooks.Bus, connectors []*Connector, log logger.Logger, observe QueueObserver) (hooks.Subscription, error) {
	if log == nil {
		log = logger.NewNop()
	}
	return bus.Subscribe(hooks.TopicPostStatusChanged, func(ctx context.Context, payload any) error {
		ev, ok := payload.(hooks.PostStatusChanged)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", hooks.TopicPostStatusChanged, payload)
		}
		data := Payload{
			KeyStatus:             ev.EventStatus,
			KeyPostStatus:         ev.Status,
			KeyPreviousPostStatus: ev.PreviousStatus,
			KeyPostType:           ev.PostType,
		}

		var errs []error
		for _, c := range connectors {
			for _, e := range c.Registry.List() {
				if e.Type() != TypeQueue {
					continue
				}
				queued, err := e.AddToQueue(ctx, ev.PostID, data)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s/%s: %w", c.Integration.ID, e.ID(), err))
					continue
				}
				if observe != nil {
					observe(c.Integration.ID, e.ID(), queued)
				}
				if queued {
					log.Debug("post queued",
						logger.String("integration", c.Integration.ID),
						logger.String("endpoint", e.ID()),
						logger.Int64("post_id", ev.PostID))
				}
			}
		}
		return errors.Join(errs...)
	})
}
