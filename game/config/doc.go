// Package config provides configuration management for the grid game client.
//
// The config package handles:
//   - Loading client settings from an optional JSON file
//   - Environment overrides (GRID_* variables, typically from a .env file)
//   - Validation of server address, ports and timeouts
//   - Deriving the HTTP base URL and the map stream URL
//
// Precedence:
//
// Defaults are applied first, then the JSON file, then the environment, and
// finally command line flags set explicitly by the user. Flags are applied by
// the command package; this package only exposes the merged struct.
//
// Configuration Format:
//
//	{
//	  "server_host": "localhost",
//	  "http_port": 8000,
//	  "stream_path": "/ws",
//	  "timeout_seconds": 10,
//	  "log_file": "grid-client.log",
//	  "debug": false,
//	  "inspect_addr": "127.0.0.1:8090"
//	}
//
// Usage:
//
//	cfg, err := config.Load("grid-client.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg.ApplyEnv(os.LookupEnv)
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
//	api := rest.NewClient(cfg.BaseURL(), cfg.Timeout(), logger)
package config
