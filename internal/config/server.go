// Package config loads and hot-reloads the two on-disk configuration
// files a running server reads: server.yaml (listen/runtime settings)
// and gametypes.toml (per-gametype rulesets).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MapRotationEntry is one entry in the map cycle.
type MapRotationEntry struct {
	Map      string `yaml:"map"`
	Gametype string `yaml:"gametype"`
}

// Server holds the settings loaded from server.yaml. Listen and
// MaxClients are latched: SPEC_FULL's ambient-stack rules require a
// map_restart to pick up a change to either, so Watcher never treats an
// edit to those two fields as something to hot-apply.
type Server struct {
	Listen        string             `yaml:"listen"`
	MaxClients    int                `yaml:"sv_maxclients"`
	TickRate      int                `yaml:"sv_fps"`
	Timeout       int                `yaml:"sv_timeout_seconds"`
	ZombieTime    int                `yaml:"sv_zombietime_seconds"`
	Rotation      []MapRotationEntry `yaml:"map_rotation"`
	AdminListen   string             `yaml:"admin_listen,omitempty"`
	AdminJWTKey   string             `yaml:"admin_jwt_key,omitempty"`
	HeartbeatAddr string             `yaml:"heartbeat_addr,omitempty"`
}

// defaultServer mirrors the reference's cvar defaults (sv_maxclients 8,
// sv_fps 20, etc.) so a config file only needs to list what it overrides.
func defaultServer() Server {
	return Server{
		Listen:     ":27960",
		MaxClients: 8,
		TickRate:   20,
		Timeout:    40,
		ZombieTime: 2,
	}
}

// LoadServer reads and parses a server.yaml file, starting from
// defaultServer so a mostly-empty file still produces a runnable config.
func LoadServer(path string) (*Server, error) {
	cfg := defaultServer()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
