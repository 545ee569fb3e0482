package login

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retcode/AshEmu/internal/config"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/packet"
	"github.com/retcode/AshEmu/internal/store"
)

func newTestSession(t *testing.T, cfg config.LoginSettings) (*Session, net.Conn, store.Store) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close(); _ = client.Close() })

	st := store.NewMemoryStore()
	log := logging.New(logging.LevelError, logging.FormatJSON)
	s := NewSession(server, st, log, cfg)
	return s, client, st
}

func buildChallenge(username string) []byte {
	w := packet.NewWriter()
	w.Uint8(0x00) // opcode placeholder, overwritten below for clarity
	w.Uint8(0)    // error
	w.Uint16(0)   // size
	w.Bytes([]byte("WoW\x00")) // gamename
	w.Uint8(1)
	w.Uint8(12)
	w.Uint8(1) // version
	w.Uint16(5875) // build
	w.Bytes([]byte("x86\x00"))
	w.Bytes([]byte("Win\x00"))
	w.Bytes([]byte("enUS"))
	w.Uint32(0) // timezone
	w.Uint32(0) // ip
	w.Uint8(uint8(len(username)))
	w.Bytes([]byte(username))

	data := w.Data()
	data[0] = 0x00
	return data
}

func TestLogonChallengeAutoCreatesAccount(t *testing.T) {
	cfg := config.LoginSettings{RealmName: "AshEmu", RealmHost: "127.0.0.1", RealmPort: 8085, AutoCreateAccount: true}
	s, client, st := newTestSession(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	_, err := client.Write(buildChallenge("ALICE"))
	require.NoError(t, err)

	header := make([]byte, 3)
	_, err = client.Read(header)
	require.NoError(t, err)
	require.EqualValues(t, 0x00, header[0])
	require.EqualValues(t, 0x00, header[2]) // success

	_ = client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit")
	}

	require.Equal(t, StateChallenged, s.State())

	acct, result, err := st.GetAccount(ctx, "ALICE")
	require.NoError(t, err)
	require.Equal(t, store.OK, result)
	require.Equal(t, "ALICE", acct.Username)
}

func TestLogonProofInvalidRejected(t *testing.T) {
	cfg := config.LoginSettings{RealmName: "AshEmu", RealmHost: "127.0.0.1", RealmPort: 8085, AutoCreateAccount: true}
	s, client, _ := newTestSession(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	_, err := client.Write(buildChallenge("BOB"))
	require.NoError(t, err)
	header := make([]byte, 3)
	_, err = client.Read(header)
	require.NoError(t, err)

	// B(32) + g_len(1) + g(1) + N_len(1) + N(32) + salt(32) + crc(16) + secflags(1)
	rest := make([]byte, 32+1+1+1+32+32+16+1)
	n, err := io.ReadFull(client, rest)
	require.NoError(t, err)
	require.Equal(t, len(rest), n)

	w := packet.NewWriter()
	w.Uint8(0x01)
	var a [32]byte
	a[0] = 1
	w.Bytes(a[:])
	var m1 [20]byte
	w.Bytes(m1[:])
	w.Zeros(20) // crc
	w.Uint8(1)  // key count
	w.Uint8(0)  // security flags
	_, err = client.Write(w.Data())
	require.NoError(t, err)

	respHeader := make([]byte, 2)
	_, err = client.Read(respHeader)
	require.NoError(t, err)
	require.EqualValues(t, 0x01, respHeader[0])
	require.EqualValues(t, authFailIncorrectPassword, respHeader[1])

	require.NotEqual(t, StateAuthenticated, s.State())

	_ = client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit")
	}
}

func TestRealmListValidBeforeAuth(t *testing.T) {
	cfg := config.LoginSettings{RealmName: "AshEmu", RealmHost: "127.0.0.1", RealmPort: 8085, AutoCreateAccount: true}
	s, client, _ := newTestSession(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	w := packet.NewWriter()
	w.Uint8(0x10)
	_, err := client.Write(w.Data())
	require.NoError(t, err)

	header := make([]byte, 3)
	_, err = client.Read(header)
	require.NoError(t, err)
	require.EqualValues(t, 0x10, header[0])

	_ = client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit")
	}
}
