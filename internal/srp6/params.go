// Package srp6 implements the server side of the protocol's SRP-6 variant:
// little-endian big-integer wire encoding, SHA-1 hashing, and the
// interleaved session-key derivation the client expects.
package srp6

import "math/big"

// KeySize is the width in bytes of N, the verifier, B, and A on the wire.
const KeySize = 32

// SaltSize is the width in bytes of the account salt.
const SaltSize = 32

// SessionKeySize is the width in bytes of the interleaved session key K.
const SessionKeySize = 40

// ProofSize is the width in bytes of M1 and M2.
const ProofSize = 20

// PrivateSize is the width in bytes of the server's ephemeral private value b.
const PrivateSize = 19

// nBytesLE is the fixed 256-bit modulus, reproduced in wire (little-endian) order.
var nBytesLE = [KeySize]byte{
	0xB7, 0x9B, 0x3E, 0x2A, 0x87, 0x82, 0x3C, 0xAB,
	0x8F, 0x5E, 0xBF, 0xBF, 0x8E, 0xB1, 0x01, 0x08,
	0x53, 0x50, 0x06, 0x29, 0x8B, 0x5B, 0xAD, 0xBD,
	0x5B, 0x53, 0xE1, 0x89, 0x5E, 0x64, 0x4B, 0x89,
}

// g is the fixed generator.
const g = 7

// k is the fixed SRP-6 multiplier used by this protocol (not H(N|g) as in
// standard SRP-6a; the client hardcodes k=3).
const k = 3

// N returns the fixed modulus as a big.Int, reconstructed from its
// little-endian wire bytes.
func N() *big.Int {
	return new(big.Int).SetBytes(reverse(nBytesLE[:]))
}

// G returns the fixed generator.
func G() *big.Int {
	return big.NewInt(g)
}

// K returns the fixed multiplier.
func K() *big.Int {
	return big.NewInt(k)
}

// GBytesLE returns the generator encoded as a single little-endian byte,
// as used in M1 computation and the LOGON_CHALLENGE response.
func GBytesLE() []byte {
	return []byte{g}
}

// NBytesLE returns the modulus in its fixed wire (little-endian) order.
func NBytesLE() []byte {
	out := make([]byte, KeySize)
	copy(out, nBytesLE[:])
	return out
}

// reverse returns a new slice with b's bytes in reverse order, used to
// convert between the wire's little-endian convention and math/big's
// big-endian Bytes()/SetBytes() convention.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// leBytes encodes v as exactly size little-endian bytes, left-padding (in
// big-endian terms, right-padding on the wire) with zeros as needed.
func leBytes(v *big.Int, size int) []byte {
	be := v.Bytes()
	if len(be) > size {
		be = be[len(be)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(be):], be)
	return reverse(out)
}

// leToInt interprets b as a little-endian unsigned integer.
func leToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(reverse(b))
}
