// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/gateguard/core/config"
//
//	type GateConfig struct {
//		RequestsPerMinute int    `env:"GATE_REQUESTS_PER_MINUTE" envDefault:"60"`
//		BurstSize         int    `env:"GATE_BURST_SIZE" envDefault:"10"`
//		SigningSecret     string `env:"GATE_SIGNING_SECRET,required"`
//	}
//
//	func main() {
//		var cfg GateConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 GateConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 GateConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently.
package config
