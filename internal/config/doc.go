// Package config holds the tunables of a provisioning run that come from the
// environment rather than from flags.
package config
