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

// Package client owns the client context: configuration, the registry
// session, and the locator registry whose lifecycle it scopes.
package client

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the client configuration.
type Config struct {
	// Instance is the instance name registered under the instance-names
	// registry path.
	Instance string `yaml:"instance"`

	// ZooKeepers are the registry servers, host:port each.
	ZooKeepers []string `yaml:"zookeepers"`

	// SessionTimeout is the registry session timeout.
	SessionTimeout Duration `yaml:"sessionTimeout"`
}

const defaultSessionTimeout = 30 * time.Second

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading client config")
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing client config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Instance == "" {
		return errors.New("client config: instance name is required")
	}
	if len(c.ZooKeepers) == 0 {
		return errors.New("client config: at least one zookeeper is required")
	}
	if c.SessionTimeout == 0 {
		c.SessionTimeout = Duration(defaultSessionTimeout)
	}
	return nil
}
