// ABOUTME: Tests for the charm client options and sync bookkeeping
// ABOUTME: Covers staleness and last-sync tracking without a charm server

package charm

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CHARM_HOST", "")

	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientOptions(t *testing.T) {
	logger := log.New(io.Discard)
	c := newTestClient(t, WithDBName("vcardz-test"), WithLogger(logger), WithLogger(nil))

	if c.dbName != "vcardz-test" {
		t.Errorf("expected db name vcardz-test, got %s", c.dbName)
	}
	if c.logger != logger {
		t.Error("expected nil logger option to be ignored")
	}
	if c.staleThreshold != time.Hour {
		t.Errorf("expected default 1h stale threshold, got %v", c.staleThreshold)
	}
	if c.Linked() {
		t.Error("expected a fresh config to be unlinked")
	}
}

func TestIsStale(t *testing.T) {
	c := newTestClient(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if !c.IsStale() {
		t.Error("expected a never-synced replica to be stale")
	}

	recent := now.Add(-10 * time.Minute)
	c.cfg.LastSync = &recent
	if c.IsStale() {
		t.Error("expected a replica synced 10m ago to be fresh")
	}

	old := now.Add(-2 * time.Hour)
	c.cfg.LastSync = &old
	if !c.IsStale() {
		t.Error("expected a replica synced 2h ago to be stale")
	}

	c.staleThreshold = 0
	if c.IsStale() {
		t.Error("expected a zero threshold to disable staleness")
	}
}

func TestMarkSyncedPersists(t *testing.T) {
	c := newTestClient(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if !c.LastSyncTime().IsZero() {
		t.Fatal("expected no last sync time yet")
	}
	if err := c.markSynced(); err != nil {
		t.Fatalf("markSynced: %v", err)
	}
	if !c.LastSyncTime().Equal(now) {
		t.Errorf("expected last sync %v, got %v", now, c.LastSyncTime())
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.LastSync == nil || !loaded.LastSync.Equal(now) {
		t.Errorf("expected saved last sync %v, got %v", now, loaded.LastSync)
	}
}

func TestDeleteCardsEmptyIsNoop(t *testing.T) {
	c := newTestClient(t, WithDBName("vcardz-unused"))
	if err := c.DeleteCards(nil); err != nil {
		t.Errorf("expected no error for empty delete, got %v", err)
	}
}
