package srp6

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // protocol mandates SHA-1, not a security choice we control
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
)

// Engine holds one session's worth of server-side SRP-6 state: the account's
// salt and verifier, the server's ephemeral keypair (b, B), the client's
// public value A once received, and — after a successful VerifyProof — the
// derived 40-byte session key.
type Engine struct {
	Username string
	Salt     [SaltSize]byte
	Verifier *big.Int

	b *big.Int
	B *big.Int
	A *big.Int

	sessionKey [SessionKeySize]byte
	hasKey     bool
}

// New constructs an Engine for a stored (salt, verifier) pair and generates
// the server's ephemeral key pair (b, B). username is used uppercased in
// later proof computation and must match what ComputeVerifier received.
func New(username string, salt [SaltSize]byte, verifierLE []byte) (*Engine, error) {
	e := &Engine{
		Username: strings.ToUpper(username),
		Salt:     salt,
		Verifier: leToInt(verifierLE),
	}
	if err := e.generateB(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) generateB() error {
	bBytes := make([]byte, PrivateSize)
	if _, err := rand.Read(bBytes); err != nil {
		return fmt.Errorf("srp6: generate b: %w", err)
	}
	e.b = leToInt(bBytes)

	// B = (k*v + g^b) mod N
	n := N()
	kv := new(big.Int).Mul(K(), e.Verifier)
	kv.Mod(kv, n)
	gb := new(big.Int).Exp(G(), e.b, n)
	e.B = new(big.Int).Add(kv, gb)
	e.B.Mod(e.B, n)

	if e.B.Sign() == 0 {
		return fmt.Errorf("srp6: B mod N == 0")
	}
	return nil
}

// BBytes returns the server's public value B as 32 little-endian bytes.
func (e *Engine) BBytes() []byte {
	return leBytes(e.B, KeySize)
}

// ComputeVerifier derives (salt, verifier) for a fresh account from a
// username/password pair, drawing a random salt. x = H(salt || H(UPPER(user)
// ":" UPPER(pass))), interpreted little-endian; v = g^x mod N.
func ComputeVerifier(username, password string) (salt [SaltSize]byte, verifierLE []byte, err error) {
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, nil, fmt.Errorf("srp6: generate salt: %w", err)
	}
	x := computeX(salt, username, password)
	v := new(big.Int).Exp(G(), x, N())
	return salt, leBytes(v, KeySize), nil
}

func computeX(salt [SaltSize]byte, username, password string) *big.Int {
	cred := sha1.Sum([]byte(strings.ToUpper(username) + ":" + strings.ToUpper(password))) //nolint:gosec
	h := sha1.New()                                                                        //nolint:gosec
	h.Write(salt[:])
	h.Write(cred[:])
	return leToInt(h.Sum(nil))
}

// VerifyProof validates the client's ephemeral public key A and proof M1.
// On success it returns the server proof M2 and the session is keyed; the
// caller should then persist SessionKey() against the account. On failure
// it returns an error and no session key is retained.
func (e *Engine) VerifyProof(ABytes, m1 []byte) (m2 []byte, err error) {
	n := N()
	a := leToInt(ABytes)
	if new(big.Int).Mod(a, n).Sign() == 0 {
		return nil, fmt.Errorf("srp6: A mod N == 0")
	}
	e.A = a

	u := leToInt(shaSum(ABytes, e.BBytes()))

	// S = (A * v^u)^b mod N
	vu := new(big.Int).Exp(e.Verifier, u, n)
	avu := new(big.Int).Mul(e.A, vu)
	avu.Mod(avu, n)
	s := new(big.Int).Exp(avu, e.b, n)

	key := deriveSessionKey(leBytes(s, KeySize))
	expectedM1 := e.computeM1(ABytes, e.BBytes(), key[:])

	if subtle.ConstantTimeCompare(expectedM1, m1) != 1 {
		return nil, fmt.Errorf("srp6: proof mismatch")
	}

	e.sessionKey = key
	e.hasKey = true

	m2 = shaSum(ABytes, m1, key[:])
	return m2, nil
}

// SessionKey returns the 40-byte interleaved session key. Valid only after
// a successful VerifyProof.
func (e *Engine) SessionKey() ([SessionKeySize]byte, bool) {
	return e.sessionKey, e.hasKey
}

func (e *Engine) computeM1(aLE, bLE, key []byte) []byte {
	hashN := sha1.Sum(NBytesLE()) //nolint:gosec
	hashG := sha1.Sum(GBytesLE()) //nolint:gosec
	var nXorG [sha1.Size]byte
	for i := range nXorG {
		nXorG[i] = hashN[i] ^ hashG[i]
	}
	hashUser := sha1.Sum([]byte(e.Username)) //nolint:gosec

	return shaSum(nXorG[:], hashUser[:], e.Salt[:], aLE, bLE, key)
}

// deriveSessionKey implements the protocol's interleaved session-key
// construction: skip S's leading zero bytes (little-endian), keep the
// remainder even-aligned, split into even/odd byte streams, hash each with
// SHA-1, and interleave the two digests byte by byte into a 40-byte key.
func deriveSessionKey(sLE []byte) [SessionKeySize]byte {
	start := 0
	for start < len(sLE) && sLE[start] == 0 {
		start++
	}
	if start%2 != 0 {
		start++
	}

	remainder := sLE[start:]
	halfLen := len(remainder) / 2

	even := make([]byte, halfLen)
	odd := make([]byte, halfLen)
	for i := 0; i < halfLen; i++ {
		even[i] = remainder[i*2]
		odd[i] = remainder[i*2+1]
	}

	evenHash := sha1.Sum(even) //nolint:gosec
	oddHash := sha1.Sum(odd)  //nolint:gosec

	var key [SessionKeySize]byte
	for i := 0; i < sha1.Size; i++ {
		key[i*2] = evenHash[i]
		key[i*2+1] = oddHash[i]
	}
	return key
}

func shaSum(parts ...[]byte) []byte {
	h := sha1.New() //nolint:gosec
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
