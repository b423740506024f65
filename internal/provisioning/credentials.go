package provisioning

import (
	"context"

	"github.com/imamik/nebuctl/internal/pki"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

// IssuedCredentials signs a fresh certificate on every run.
type IssuedCredentials struct {
	Issuer  *pki.Issuer
	Name    string
	Address netutil.NodeAddress
}

// Bundle implements Credentials.
func (c IssuedCredentials) Bundle(ctx context.Context) (*pki.Bundle, error) {
	return c.Issuer.Sign(ctx, c.Name, c.Address)
}

// StoredCredentials deploys a certificate issued ahead of time.
type StoredCredentials struct {
	Issuer *pki.Issuer
	Name   string
}

// Bundle implements Credentials.
func (c StoredCredentials) Bundle(context.Context) (*pki.Bundle, error) {
	return c.Issuer.Load(c.Name)
}
