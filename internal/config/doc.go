// Package config handles configuration loading for prep-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package validates required fields and parses duration strings.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	provider:
//	  api_key: "${OPENAI_API_KEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:3000"
//
// Database:
//
//	database:
//	  path: "/var/lib/prep-gateway/gateway.db"
//
// Completion provider:
//
//	provider:
//	  base_url: "https://api.openai.com/v1"
//	  api_key: "${OPENAI_API_KEY}"
//	  model: "gpt-5.1"
//	  max_tokens: 2048
//	  request_timeout: "2m"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
