// ABOUTME: Charm KV client wrapper used to sync cards between devices
// ABOUTME: Short-lived connections avoid lock contention with the MCP server

package charm

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	charmproto "github.com/charmbracelet/charm/proto"
	"github.com/charmbracelet/log"
)

const (
	// DBName is the name of the charm kv database for vcardz.
	DBName = "vcardz"
)

// Client holds configuration for KV operations. It does not hold a
// connection; each operation opens the database, runs, and closes it.
type Client struct {
	dbName         string
	staleThreshold time.Duration
	logger         *log.Logger
	cfg            *Config
	now            func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithDBName sets the database name.
func WithDBName(name string) Option {
	return func(c *Client) {
		c.dbName = name
	}
}

// WithLogger routes sync diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	// Set charm host if configured
	if cfg.CharmHost != "" {
		if err := os.Setenv("CHARM_HOST", cfg.CharmHost); err != nil {
			return nil, err
		}
	}

	c := &Client{
		dbName:         DBName,
		staleThreshold: time.Duration(cfg.StaleThreshold),
		logger:         log.Default(),
		cfg:            cfg,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// open runs fn against a freshly opened KV store and closes it afterwards.
func (c *Client) open(fn func(k *kv.KV) error) error {
	k, err := kv.OpenWithDefaults(c.dbName)
	if err != nil {
		return fmt.Errorf("open kv %s: %w", c.dbName, err)
	}
	defer func() { _ = k.Close() }()
	return fn(k)
}

// read runs fn after catching up with the server when the replica is stale.
func (c *Client) read(fn func(k *kv.KV) error) error {
	return c.open(func(k *kv.KV) error {
		if c.IsStale() {
			c.logger.Info("replica is stale, syncing", "threshold", c.staleThreshold)
			if err := c.syncKV(k); err != nil {
				return err
			}
		}
		return fn(k)
	})
}

// write runs fn with write access. Every KV commit is backed up to the
// charm server as part of the commit itself.
func (c *Client) write(fn func(k *kv.KV) error) error {
	return c.open(func(k *kv.KV) error {
		c.logger.Debug("writing to kv", "db", c.dbName)
		return fn(k)
	})
}

func (c *Client) syncKV(k *kv.KV) error {
	if err := k.Sync(); err != nil {
		return err
	}
	return c.markSynced()
}

// markSynced records the sync time in the config file.
func (c *Client) markSynced() error {
	now := c.now()
	c.cfg.LastSync = &now
	if err := SaveConfig(c.cfg); err != nil {
		return fmt.Errorf("record sync time: %w", err)
	}
	return nil
}

// Sync pulls updates from the charm server into the local replica.
func (c *Client) Sync() error {
	return c.open(c.syncKV)
}

// LastSyncTime returns the timestamp of the last sync operation.
func (c *Client) LastSyncTime() time.Time {
	if c.cfg.LastSync == nil {
		return time.Time{}
	}
	return *c.cfg.LastSync
}

// IsStale checks if the data is stale based on the configured threshold.
func (c *Client) IsStale() bool {
	if c.staleThreshold == 0 {
		return false
	}
	last := c.LastSyncTime()
	return last.IsZero() || c.now().Sub(last) > c.staleThreshold
}

// Reset drops the local replica and rebuilds it from the charm server.
func (c *Client) Reset() error {
	return c.open(func(k *kv.KV) error {
		if err := k.Reset(); err != nil {
			return err
		}
		return c.markSynced()
	})
}

// Wipe deletes every card from the charm server, then rebuilds the local
// replica. It returns how many cards were deleted.
func (c *Client) Wipe() (int, error) {
	deleted := 0
	err := c.open(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return err
		}
		for _, key := range matchKeys(keys, []byte(CardPrefix)) {
			if err := k.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			deleted++
		}
		return k.Reset()
	})
	return deleted, err
}

// User returns the current charm user information.
func (c *Client) User() (*charmproto.User, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return nil, err
	}
	return cc.Bio()
}

// Link initiates the charm linking process for this device.
func (c *Client) Link() error {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return err
	}
	if _, err := cc.Bio(); err != nil {
		return err
	}
	c.cfg.Linked = true
	return SaveConfig(c.cfg)
}

// Unlink forgets the charm account association and clears the replica.
func (c *Client) Unlink() error {
	if err := c.Reset(); err != nil {
		return err
	}
	c.cfg.Linked = false
	c.cfg.LastSync = nil
	return SaveConfig(c.cfg)
}

// Linked reports whether this device has been linked to a charm account.
func (c *Client) Linked() bool {
	return c.cfg.Linked
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *Config {
	return c.cfg
}
