// Package config loads the six-cities client configuration.
//
// # Resolution
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file, ~/.config/sixcities/config.toml unless a path is given
//  3. Environment variables, optionally seeded from a .env file that sits
//     next to the config file
//
// A missing config file or .env file is not an error.
//
// # TOML Format
//
//	api_url = "https://14.design.htmlacademy.pro/six-cities"
//	timeout = "5s"
//	token_file = "~/.local/state/sixcities/token.toml"
//	log_file = "~/.local/state/sixcities/sixcities.log"
//	log_level = "info"
//	logstash_addr = "localhost:5000"
//	default_city = "Amsterdam"
//
// Every field is optional. Paths get tilde expansion.
//
// # Environment
//
//   - SIXCITIES_API_URL
//   - SIXCITIES_TIMEOUT (Go duration, e.g. "10s")
//   - SIXCITIES_TOKEN_FILE
//   - SIXCITIES_LOG_FILE
//   - SIXCITIES_LOG_LEVEL (debug, info, warn, error)
//   - SIXCITIES_LOGSTASH_ADDR
package config
