package config

import "github.com/BurntSushi/toml"

// Gametype is one ruleset selected by the g_gametype value carried in the
// CS_SYSTEMINFO configstring.
type Gametype struct {
	Name         string `toml:"name"`
	FriendlyFire bool   `toml:"friendly_fire"`
	TimeLimit    int    `toml:"time_limit_minutes"`
	ScoreLimit   int    `toml:"score_limit"`
}

// Gametypes is the parsed contents of gametypes.toml, keyed by the
// gametype's short name (e.g. "ffa", "tourney", "ctf").
type Gametypes map[string]Gametype

// LoadGametypes parses a gametypes.toml file.
func LoadGametypes(path string) (Gametypes, error) {
	var gt Gametypes
	if _, err := toml.DecodeFile(path, &gt); err != nil {
		return nil, err
	}
	return gt, nil
}
