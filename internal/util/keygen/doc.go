// Package keygen generates SSH key pairs.
//
// Private keys are PEM encoded, public keys use the OpenSSH authorized_keys
// format. The SSH transport tests use these keys for both the client
// identity and the in-process server's host key.
package keygen
