// Package config loads the dashboard server configuration from a YAML file.
//
// Sections:
//   - server  listen address, WebSocket path, HTTP timeouts, CORS origins
//   - hub     per-connection queue size and ping/pong timings
//   - store   backend driver (memory | sqlite | postgres), DSN, seeding
//   - cache   analytics cache (memory | redis | none) and TTL
//   - log     level, format and output of the logrus logger
//
// Load applies defaults, then the file, then environment overrides
// (GARAGE_ADDR, PORT, GARAGE_STORE_DRIVER, GARAGE_STORE_DSN, GARAGE_REDIS_URL,
// GARAGE_LOG_LEVEL), then validates. A missing file is not an error.
package config
