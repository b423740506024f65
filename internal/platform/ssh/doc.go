// Package ssh is the remote transport used to provision mesh nodes.
//
// A [Client] owns one SSH connection and exposes two capabilities over it:
// command execution (Exec) and file transfer through an SFTP subsystem
// (Exists, ReadFile, WriteFile, Remove). Targets are given in the compact
// "user@host:port" form and parsed with [ParseTarget].
package ssh
