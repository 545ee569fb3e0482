// Package headercipher implements the world service's per-direction
// stateful header cipher, keyed from the SRP6 session key.
package headercipher

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // protocol mandates SHA-1 key derivation
)

// tbcSeed is the fixed HMAC key used to derive the build-2.4.3 header
// cipher key from the 40-byte SRP6 session key.
var tbcSeed = [16]byte{
	0x38, 0xA7, 0x83, 0x15, 0xF8, 0x92, 0x25, 0x30,
	0x71, 0x98, 0x67, 0xB1, 0x8C, 0x04, 0xE2, 0xAA,
}

// direction holds one (i, j) running-cipher state for one traffic
// direction. i cycles over the key; j is the previous ciphertext byte of
// that direction (the byte emitted on send, the byte received on receive).
type direction struct {
	i, j int
}

// Cipher is the world service's header cipher. It is keyed once from the
// SRP6 session key and from then on transforms every header byte sent and
// received; payload bytes are never touched.
type Cipher struct {
	key  []byte
	send direction
	recv direction
}

// NewVanilla keys a Cipher for build 1.12.1: the raw 40-byte session key is
// used directly, and the running index cycles modulo its length.
func NewVanilla(sessionKey [40]byte) *Cipher {
	key := make([]byte, len(sessionKey))
	copy(key, sessionKey[:])
	return &Cipher{key: key}
}

// NewTBC keys a Cipher for build 2.4.3: the cipher key is
// HMAC-SHA1(tbcSeed, sessionKey), a 20-byte value.
func NewTBC(sessionKey [40]byte) *Cipher {
	mac := hmac.New(sha1.New, tbcSeed[:]) //nolint:gosec
	mac.Write(sessionKey[:])
	return &Cipher{key: mac.Sum(nil)}
}

// Encrypt transforms header in place for sending: each byte is
// x = (plain XOR key[i]) + j (mod 256); j is then set to x.
func (c *Cipher) Encrypt(header []byte) {
	keyLen := len(c.key)
	for n := range header {
		i := c.send.i % keyLen
		x := (header[n] ^ c.key[i]) + byte(c.send.j)
		header[n] = x
		c.send.j = int(x)
		c.send.i++
	}
}

// Decrypt transforms header in place on receive: plain = (cipher - j) XOR
// key[i]; j is then set to the original ciphertext byte.
func (c *Cipher) Decrypt(header []byte) {
	keyLen := len(c.key)
	for n := range header {
		i := c.recv.i % keyLen
		cipherByte := header[n]
		plain := (cipherByte - byte(c.recv.j)) ^ c.key[i]
		header[n] = plain
		c.recv.j = int(cipherByte)
		c.recv.i++
	}
}
