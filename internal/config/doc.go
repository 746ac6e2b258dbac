// Package config loads and watches the loungewatch configuration file.
//
// Top-level types:
//   - Config{LogLevel, Monitor, Sink, Server}
//   - MonitorConfig: refresh_interval, staleness_threshold, fetch_timeout,
//     display zone/offset, user_agent, sources []
//   - Source: id, type (oriental|jis|xix|alfa|yatakoi), endpoint, tls
//   - SinkConfig: type (none|webhook|postgres), url_env/dsn_env resolved from
//     the environment by URL() and DSN(), quiet hours and minute multiple
//   - ServerConfig: http_port, broadcast_interval
//
// Load(path) reads the YAML file, applies defaults (60s refresh, 90s
// staleness, 10s fetch timeout, JST, port 5001, the five built-in feeds) and
// validates enums and ranges. Default() returns the same defaults without a
// file.
//
// Watch(ctx, path, onChange) uses fsnotify to reload on write and on the
// create event produced by atomic-save editors.
package config
