// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collab

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a [time.Duration] that marshals as a TOML string ("250ms",
// "10s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	td, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// Config holds the collaboration client settings, loadable from TOML.
type Config struct {
	// ServerURL is the snapshot feed endpoint (ws:// or wss://).
	ServerURL string `toml:"server_url"`

	// SceneID is the logical scene this client participates in.
	SceneID string `toml:"scene_id"`

	// DialTimeout bounds the WebSocket handshake.
	DialTimeout Duration `toml:"dial_timeout"`

	// BackoffMin is the first reconnect delay; doubled per consecutive
	// failure up to BackoffMax.
	BackoffMin Duration `toml:"backoff_min"`

	// BackoffMax caps the reconnect delay.
	BackoffMax Duration `toml:"backoff_max"`

	// ListenAddr is the address a snapshot server listens on.
	ListenAddr string `toml:"listen_addr"`
}

// DefaultConfig returns the default client settings, without an endpoint.
func DefaultConfig() Config {
	return Config{
		DialTimeout: Duration(5 * time.Second),
		BackoffMin:  Duration(250 * time.Millisecond),
		BackoffMax:  Duration(10 * time.Second),
		ListenAddr:  ":8780",
	}
}

// LoadConfig reads a TOML config file, applying defaults for unset fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("collab: config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("collab: config %s: %w", path, err)
	}
	return cfg, nil
}
