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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
instance: prod
zookeepers:
  - zk1:2181
  - zk2:2181
sessionTimeout: 10s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Instance)
	require.Equal(t, []string{"zk1:2181", "zk2:2181"}, cfg.ZooKeepers)
	require.Equal(t, Duration(10*time.Second), cfg.SessionTimeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
instance: dev
zookeepers: [localhost:2181]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Duration(defaultSessionTimeout), cfg.SessionTimeout)
}

func TestLoadConfigRejectsIncomplete(t *testing.T) {
	path := writeConfig(t, `zookeepers: [localhost:2181]`)
	_, err := LoadConfig(path)
	require.Error(t, err)

	path = writeConfig(t, `instance: dev`)
	_, err = LoadConfig(path)
	require.Error(t, err)

	path = writeConfig(t, `
instance: dev
zookeepers: [localhost:2181]
sessionTimeout: not-a-duration
`)
	_, err = LoadConfig(path)
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
