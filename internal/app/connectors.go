package app

import (
	"fmt"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/catalog"
	"github.com/MrSnakeDoc/automator/internal/logger"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
)

// buildConnectors creates one connector per integration and registers the
// catalog endpoints on its dashboard. Queue endpoints store their entries
// under <integration>:<endpoint>.
func buildConnectors(
	cat catalog.Catalog,
	store *redisstore.Store,
	plugins automator.Dependencies,
	mirror automator.Mirror,
	log logger.Logger,
) ([]*automator.Connector, error) {
	triggers := automator.NewTriggers(store)

	connectors := make([]*automator.Connector, 0, len(automator.Integrations()))
	for _, integration := range automator.Integrations() {
		c, err := automator.NewConnector(integration)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s connector: %w", integration.ID, err)
		}

		for _, def := range cat.For(integration.ID) {
			opts := automator.EndpointOptions{
				Options:      store,
				Dependencies: plugins,
				Mirror:       mirror,
				Logger:       log,
			}
			if def.Type == automator.TypeQueue {
				trigger, err := triggers.Get(def.Trigger)
				if err != nil {
					return nil, fmt.Errorf("%s/%s: %w", integration.ID, def.ID, err)
				}
				opts.Queue = automator.NewQueue(integration.ID+":"+def.ID, trigger, store)
			}

			e, err := automator.NewEndpoint(integration, def, opts)
			if err != nil {
				return nil, err
			}
			e.AddToDashboard(c.Registry)
		}

		log.Info("integration registered",
			logger.String("integration", integration.ID),
			logger.Int("endpoints", len(c.Registry.List())))
		connectors = append(connectors, c)
	}
	return connectors, nil
}
