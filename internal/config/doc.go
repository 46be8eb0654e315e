// Package config discovers and loads routex project configuration.
//
// A configuration file is one of routex.json, routex.yaml, routex.yml or
// routex.toml (in that priority order within a directory). All formats
// share one shape, validated against an embedded JSON Schema:
//
//	routesPath: ./routes
//	plugins:
//	  - name: metrics
//	    options:
//	      path: /metrics
//	  - name: accesslog
//	server:
//	  addr: ":3000"
//	  shutdownTimeout: 10s
//	s3:
//	  region: eu-west-1
//
// ROUTEX_* environment variables (ROUTEX_ROUTES_PATH, ROUTEX_ADDR,
// ROUTEX_SHUTDOWN_TIMEOUT, ROUTEX_S3_REGION, ROUTEX_S3_ENDPOINT,
// ROUTEX_S3_FORCE_PATH_STYLE) override the file. A .env file next to the
// configuration is loaded first.
//
// # Usage
//
//	cfg := config.Resolve(".", logger, false)
//	routes := cfg.RoutesDir(".")
package config
