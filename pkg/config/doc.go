// Package config provides application configuration management from
// environment variables and an optional YAML file.
//
// # Overview
//
// Values are layered: built-in defaults, then the YAML file named by --config
// or SWITCHYARD_CONFIG_FILE, then SWITCHYARD_* environment variables.
//
// # Configuration Structure
//
// Server settings:
//
//	SWITCHYARD_HOST="0.0.0.0"
//	SWITCHYARD_PORT="3000"
//	SWITCHYARD_ENV="production"  # development, production, test
//	SWITCHYARD_READ_TIMEOUT="15s"
//	SWITCHYARD_MAX_BODY_BYTES="1048576"
//
// Logging and observability settings:
//
//	SWITCHYARD_LOG_LEVEL="info"  # debug, info, warn, error
//	SWITCHYARD_LOG_FORMAT="json" # text, json
//	SWITCHYARD_METRICS_ENABLED="true"
//	SWITCHYARD_OTEL_ENABLED="true"
//	SWITCHYARD_OTEL_ENDPOINT="otel-collector:4317"
//
// Plugin settings:
//
//	SWITCHYARD_LINEAR_API_KEY="lin_api_..."
//	SWITCHYARD_GITHUB_ENABLED="true"
//	SWITCHYARD_GITHUB_TOKEN="ghp_..."
//
// The same settings in YAML:
//
//	environment: production
//	server:
//	  port: 3000
//	  read_timeout: 15s
//	plugins:
//	  linear:
//	    api_key: lin_api_...
//	  github:
//	    enabled: true
//	    app_id: 12345
//	    installation_id: 67890
//	    private_key_path: /etc/switchyard/github.pem
//
// # Usage Example
//
//	cfg, err := config.LoadConfig(configPath)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(cfg.Address())
//
// # Reloading
//
// Watch re-reads the file after every save and hands each valid result to a
// callback. The server only applies the log level from reloads.
package config
