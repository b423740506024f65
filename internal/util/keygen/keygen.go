package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds an SSH key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the PEM-encoded private key.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
	// Signer signs with the private key.
	Signer ssh.Signer
}

// GenerateEd25519KeyPair generates an ed25519 key pair. The private key is
// encoded in the OpenSSH private key format.
func GenerateEd25519KeyPair() (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ed25519 key: %w", err)
	}

	return newKeyPair(priv, pem.EncodeToMemory(block))
}

func newKeyPair(key any, privPEM []byte) (*KeyPair, error) {
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	return &KeyPair{
		PrivateKey: privPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(signer.PublicKey()),
		Signer:     signer,
	}, nil
}
