package config

import "strings"

// Server configures the room server.
type Server struct {
	APIPort string `env:"API_PORT"`
	// Port is honoured when API_PORT is unset (hosting platforms set it).
	Port          string `env:"PORT"`
	DataFile      string `env:"DATA_FILE"      envDefault:"local-data.json"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

const defaultPort = "4000"

func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Addr is the listen address: API_PORT, then PORT, then 4000.
func (s Server) Addr() string {
	for _, p := range []string{s.APIPort, s.Port} {
		if p = strings.TrimSpace(p); p != "" {
			return ":" + p
		}
	}
	return ":" + defaultPort
}
