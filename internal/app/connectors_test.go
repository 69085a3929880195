package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/catalog"
	"github.com/MrSnakeDoc/automator/internal/logger"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
)

func TestBuildConnectors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redisstore.NewStore(client)

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default(): %v", err)
	}
	connectors, err := buildConnectors(cat, store, automator.NewPluginSet("tec"), nil, logger.NewNop())
	if err != nil {
		t.Fatalf("buildConnectors(): %v", err)
	}

	if len(connectors) != 2 {
		t.Fatalf("connectors = %d, want 2", len(connectors))
	}
	want := map[string]int{"zapier": 6, "power-automate": 3}
	for _, c := range connectors {
		if got := len(c.Registry.List()); got != want[c.Integration.ID] {
			t.Errorf("%s endpoints = %d, want %d", c.Integration.ID, got, want[c.Integration.ID])
		}
	}

	// Queue endpoints of two integrations never share storage.
	zapier, _ := connectors[0].Manager().Endpoint("canceled_events")
	power, _ := connectors[1].Manager().Endpoint("canceled_events")
	if zapier.Queue().Key() == power.Queue().Key() {
		t.Errorf("queues share key %q", zapier.Queue().Key())
	}
	if err := store.PushEntry(context.Background(), zapier.Queue().Key(), automator.Entry{ID: "1", PostID: 1}); err != nil {
		t.Fatalf("PushEntry(): %v", err)
	}
	if n, _ := power.Queue().Len(context.Background()); n != 0 {
		t.Errorf("power automate queue len = %d", n)
	}
}

func TestBuildConnectorsUnknownTrigger(t *testing.T) {
	cat := catalog.Catalog{"zapier": {{
		ID:      "odd",
		Path:    "/odd",
		Type:    automator.TypeQueue,
		Trigger: "nope",
	}}}
	if _, err := buildConnectors(cat, redisstore.NewStore(nil), nil, nil, logger.NewNop()); err == nil {
		t.Fatal("buildConnectors() error = nil, want unknown trigger")
	}
}
