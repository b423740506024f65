package netutil

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
)

// ErrAddressSpaceExhausted is returned when a node offset does not fit into
// the host bits of a network block.
var ErrAddressSpaceExhausted = errors.New("address space exhausted")

// NodeAddress is a concrete host address inside a network block.
type NodeAddress struct {
	Block netip.Prefix
	Addr  netip.Addr
}

// Prefix returns the address with the block's prefix length, e.g. 10.0.0.5/24.
func (a NodeAddress) Prefix() netip.Prefix {
	return netip.PrefixFrom(a.Addr, a.Block.Bits())
}

// String renders the address as "<address>/<prefix>".
func (a NodeAddress) String() string {
	return a.Prefix().String()
}

// ParseBlock parses a network block and masks off any host bits.
func ParseBlock(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid network block %q: %w", s, err)
	}
	return p.Masked(), nil
}

// DeriveAddress returns the address at the given offset from the start of block.
// This mirrors Terraform's cidrhost for non-negative host numbers, but works on
// blocks of any width: the base address is treated as an unsigned big-endian
// integer, so IPv6 blocks never wrap.
//
// The offset must satisfy offset < 2^(bits-prefix), otherwise
// ErrAddressSpaceExhausted is returned.
func DeriveAddress(block netip.Prefix, offset uint64) (NodeAddress, error) {
	if !block.IsValid() {
		return NodeAddress{}, fmt.Errorf("invalid network block %s", block)
	}
	block = block.Masked()
	base := block.Addr()
	width := base.BitLen()

	hostBits := uint(width - block.Bits())
	off := new(big.Int).SetUint64(offset)
	limit := new(big.Int).Lsh(big.NewInt(1), hostBits)
	if off.Cmp(limit) >= 0 {
		return NodeAddress{}, fmt.Errorf("offset %d does not fit in %s: %w", offset, block, ErrAddressSpaceExhausted)
	}

	raw := base.AsSlice()
	sum := new(big.Int).Add(new(big.Int).SetBytes(raw), off)
	out := sum.Bytes()
	if len(out) > len(raw) {
		return NodeAddress{}, fmt.Errorf("offset %d overflows %d-byte address: %w", offset, len(raw), ErrAddressSpaceExhausted)
	}

	// Left-pad to the block's byte width.
	padded := make([]byte, len(raw))
	copy(padded[len(padded)-len(out):], out)

	addr, ok := netip.AddrFromSlice(padded)
	if !ok {
		return NodeAddress{}, fmt.Errorf("cannot encode %d-byte address", len(padded))
	}

	return NodeAddress{Block: block, Addr: addr}, nil
}

// FirstUsable returns the first host address of block (offset 1).
// The lighthouse always sits at this address.
func FirstUsable(block netip.Prefix) (NodeAddress, error) {
	return DeriveAddress(block, 1)
}
