// Package nebula models the configuration file read by the nebula daemon and
// renders it in the exact YAML shape the daemon expects.
//
// Absent values are omitted: optional scalars are pointers, optional
// sections are nil pointers, empty lists and maps are dropped. The
// static_host_map section is always written with double-quoted keys and
// single-line flow lists, e.g.
//
//	static_host_map:
//	  "10.42.0.1": ["203.0.113.10:4242"]
package nebula
