// Package metric provides Prometheus metrics for envlayer.
//
// Metrics cover the load/inject pipeline:
//
//   - envlayer_loads_total{mode,result}: completed LoadConfig calls
//   - envlayer_load_duration_seconds{mode}: LoadConfig latency
//   - envlayer_layers_read_total{layer}: layer files found and parsed
//   - envlayer_keys_retained: keys left after the prefix filter on the last load
//   - envlayer_keys_injected_total / envlayer_keys_skipped_total: injection outcome
//   - envlayer_reloads_total{result}: watcher-triggered reloads
//
// A Registry owns its own prometheus.Registry; nothing is registered
// with the global default registerer. WriteTextfile dumps the registry
// in the node_exporter textfile format.
package metric
