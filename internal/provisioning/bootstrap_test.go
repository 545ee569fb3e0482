package provisioning_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retcode/AshEmu/internal/provisioning"
)

func TestGenerateAdminCredentialIsUsable(t *testing.T) {
	cred, err := provisioning.GenerateAdminCredential()
	require.NoError(t, err)

	assert.Equal(t, provisioning.AdminUsername, cred.Username)
	assert.NotEmpty(t, cred.Password)
	assert.NotZero(t, cred.Salt)
	assert.NotZero(t, cred.Verifier)
}

func TestGenerateAdminCredentialIsRandomEachCall(t *testing.T) {
	a, err := provisioning.GenerateAdminCredential()
	require.NoError(t, err)
	b, err := provisioning.GenerateAdminCredential()
	require.NoError(t, err)

	assert.NotEqual(t, a.Password, b.Password)
	assert.NotEqual(t, a.Salt, b.Salt)
}

func TestWriteOnceRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "admin-credential.txt")

	cred, err := provisioning.GenerateAdminCredential()
	require.NoError(t, err)

	require.NoError(t, provisioning.WriteOnce(path, cred))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), cred.Password)

	err = provisioning.WriteOnce(path, cred)
	assert.Error(t, err)
}
