// Copyright 2026 The Accumulo Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package client

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-zookeeper/zk"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tchaie/accumulo/pkg/client/locator"
	"github.com/tchaie/accumulo/pkg/data"
	"github.com/tchaie/accumulo/pkg/zookeeper"
)

// Client is the scoped context shared by everything talking to one
// instance: the registry session and cache, the liveness checker, and the
// locator registry. Acquire with Dial, release with Close.
type Client struct {
	cfg        Config
	logger     *zap.Logger
	conn       *zk.Conn
	cache      *zookeeper.Cache
	instanceID data.InstanceID
	registry   *locator.Registry
}

// DialOption configures a Client.
type DialOption func(*dialOptions)

type dialOptions struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// WithLogger sets the client logger; the default discards.
func WithLogger(logger *zap.Logger) DialOption {
	return func(o *dialOptions) { o.logger = logger }
}

// WithMetrics registers locator metrics with the given registerer.
func WithMetrics(reg prometheus.Registerer) DialOption {
	return func(o *dialOptions) { o.registerer = reg }
}

// Dial connects to the instance's registry and builds the locator
// registry. The location obtainer is supplied by the transport layer.
func Dial(cfg Config, obtainer locator.LocationObtainer, opts ...DialOption) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var o dialOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	conn, _, err := zk.Connect(cfg.ZooKeepers, time.Duration(cfg.SessionTimeout), zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to zookeeper")
	}

	cache := zookeeper.NewCache(conn, o.logger)

	idBytes, _, err := cache.Get(zookeeper.InstanceNamePath(cfg.Instance))
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "resolving instance %q", cfg.Instance)
	}
	if idBytes == nil {
		conn.Close()
		return nil, errors.Newf("instance %q is not registered", cfg.Instance)
	}
	instanceID, err := data.ParseInstanceID(string(idBytes))
	if err != nil {
		conn.Close()
		return nil, err
	}

	var metrics *locator.Metrics
	if o.registerer != nil {
		metrics = locator.NewMetrics(o.registerer)
	}

	registry := locator.NewRegistry(locator.RegistryConfig{
		Obtainer:    obtainer,
		LockChecker: zookeeper.NewLockChecker(cache, instanceID),
		RootReader:  zookeeper.NewRootReader(cache, instanceID),
		Logger:      o.logger,
		Metrics:     metrics,
	})

	return &Client{
		cfg:        cfg,
		logger:     o.logger,
		conn:       conn,
		cache:      cache,
		instanceID: instanceID,
		registry:   registry,
	}, nil
}

// InstanceID returns the connected instance's id.
func (c *Client) InstanceID() data.InstanceID { return c.instanceID }

// Locator returns the locator for the table, creating it on first use.
func (c *Client) Locator(tableID data.TableID) locator.TabletLocator {
	return c.registry.Locator(tableID)
}

// Registry exposes the locator registry for registry-wide invalidation.
func (c *Client) Registry() *locator.Registry { return c.registry }

// Close releases the registry session and drops all locators.
func (c *Client) Close() {
	c.registry.Close()
	c.cache.ClearAll()
	c.conn.Close()
}
