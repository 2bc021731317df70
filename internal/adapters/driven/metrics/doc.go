// Package metrics records run statistics as Prometheus metrics.
//
// A run is a single process, so metrics are written once to a text file
// in the node_exporter textfile format rather than served over HTTP.
package metrics
