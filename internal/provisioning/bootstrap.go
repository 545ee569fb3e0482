// Package provisioning seeds a local admin account on first boot, so a
// freshly checked-out server has at least one usable login without
// requiring an operator to hand-craft a verifier.
package provisioning

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // pbkdf2 here derives a passphrase, not a wire digest
	"encoding/base32"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/retcode/AshEmu/internal/srp6"
)

const (
	// AdminUsername is the account name seeded at first boot.
	AdminUsername = "ADMIN"

	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 20
	passphraseSaltLen = 16
)

// BootstrapCredential is the admin account's generated, one-time-visible
// plaintext password plus the (salt, verifier) pair a store.Store needs.
type BootstrapCredential struct {
	Username string
	Password string
	Salt     [srp6.SaltSize]byte
	Verifier [srp6.KeySize]byte
}

// GenerateAdminCredential derives a random, human-typable passphrase via
// PBKDF2-HMAC-SHA1 over fresh random material, then computes the SRP6
// verifier for it the same way a normal account-create would. The
// passphrase is never itself stored; only its verifier is.
func GenerateAdminCredential() (*BootstrapCredential, error) {
	master := make([]byte, 20)
	if _, err := rand.Read(master); err != nil {
		return nil, fmt.Errorf("provisioning: generate master secret: %w", err)
	}

	pbkdfSalt := make([]byte, passphraseSaltLen)
	if _, err := rand.Read(pbkdfSalt); err != nil {
		return nil, fmt.Errorf("provisioning: generate passphrase salt: %w", err)
	}

	derived := pbkdf2.Key(master, pbkdfSalt, pbkdf2Iterations, pbkdf2KeyLen, sha1.New)
	password := strings.TrimRight(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(derived), "=")

	salt, verifierLE, err := srp6.ComputeVerifier(AdminUsername, password)
	if err != nil {
		return nil, fmt.Errorf("provisioning: compute verifier: %w", err)
	}

	var verifier [srp6.KeySize]byte
	copy(verifier[:], verifierLE)

	return &BootstrapCredential{
		Username: AdminUsername,
		Password: password,
		Salt:     salt,
		Verifier: verifier,
	}, nil
}

// WriteOnce writes the plaintext password to path exactly once, refusing
// to overwrite an existing file so a credential is never silently
// regenerated (and the old one orphaned) on a second run.
func WriteOnce(path string, cred *BootstrapCredential) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("provisioning: %s already exists, refusing to overwrite", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("provisioning: stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("provisioning: create directory for %s: %w", path, err)
	}

	contents := fmt.Sprintf("username: %s\npassword: %s\n", cred.Username, cred.Password)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("provisioning: write %s: %w", path, err)
	}

	return nil
}
