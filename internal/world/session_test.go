package world

import (
	"context"
	"crypto/sha1" //nolint:gosec // test digest matches the protocol's mandated hash
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retcode/AshEmu/internal/headercipher"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/packet"
	"github.com/retcode/AshEmu/internal/protocol"
	"github.com/retcode/AshEmu/internal/store"
)

func newTestSession(t *testing.T) (*Session, net.Conn, store.Store) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = server.Close(); _ = client.Close() })

	st := store.NewMemoryStore()
	log := logging.New(logging.LevelError, logging.FormatJSON)
	s := NewSession(server, st, log, protocol.BuildTBC)
	return s, client, st
}

func readFrame(t *testing.T, conn net.Conn) (uint16, []byte) {
	t.Helper()
	header := make([]byte, 4)
	_, err := conn.Read(header)
	require.NoError(t, err)
	size := binary.BigEndian.Uint16(header[0:2])
	opcode := binary.LittleEndian.Uint16(header[2:4])
	payload := make([]byte, int(size)-2)
	if len(payload) > 0 {
		_, err = conn.Read(payload)
		require.NoError(t, err)
	}
	return opcode, payload
}

func writeFrame(t *testing.T, conn net.Conn, opcode protocol.Opcode, payload []byte) {
	t.Helper()
	header := make([]byte, 6)
	binary.BigEndian.PutUint16(header[0:2], uint16(len(payload)+4))
	binary.LittleEndian.PutUint32(header[2:6], uint32(opcode))
	_, err := conn.Write(header)
	require.NoError(t, err)
	if len(payload) > 0 {
		_, err = conn.Write(payload)
		require.NoError(t, err)
	}
}

func TestSessionAuthChallengeThenAuthSession(t *testing.T) {
	s, client, st := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var sessionKey [store.SessionKeySize]byte
	for i := range sessionKey {
		sessionKey[i] = byte(i + 1)
	}
	acct, _, err := st.CreateAccount(ctx, "ALICE", [store.SaltSize]byte{}, [store.VerifierSize]byte{})
	require.NoError(t, err)
	_, err = st.UpdateSessionKey(ctx, acct.ID, sessionKey)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	opcode, payload := readFrame(t, client)
	require.EqualValues(t, protocol.SMSGAuthChallenge, opcode)
	r := packet.NewReader(payload)
	serverSeed := r.Uint32()

	clientSeed := uint32(0xDEADBEEF)
	h := sha1.New() //nolint:gosec
	h.Write([]byte("ALICE"))
	var zero [4]byte
	h.Write(zero[:])
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], clientSeed)
	h.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:], serverSeed)
	h.Write(buf[:])
	h.Write(sessionKey[:])
	digest := h.Sum(nil)

	w := packet.NewWriter()
	w.Uint32(12340) // build
	w.Uint32(1)     // server id
	w.CString("alice")
	w.Uint32(clientSeed)
	w.Bytes(digest)
	writeFrame(t, client, protocol.CMSGAuthSession, w.Data())

	// AUTH_RESPONSE is the first frame sent after the header cipher is
	// keyed, so its header arrives encrypted and is decrypted client-side.
	clientCipher := headercipher.NewTBC(sessionKey)
	respHeader := make([]byte, 4)
	_, err = io.ReadFull(client, respHeader)
	require.NoError(t, err)
	clientCipher.Decrypt(respHeader)
	respSize := binary.BigEndian.Uint16(respHeader[0:2])
	require.EqualValues(t, protocol.SMSGAuthResponse, binary.LittleEndian.Uint16(respHeader[2:4]))
	payload = make([]byte, int(respSize)-2)
	_, err = io.ReadFull(client, payload)
	require.NoError(t, err)
	require.EqualValues(t, worldAuthOK, payload[0])

	_ = client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after connection close")
	}

	require.Equal(t, StateAuthed, s.State())
}

func TestSessionPlayerLoginMissingCharacterLeavesStateUnchanged(t *testing.T) {
	s, client, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s.state = StateCharSelect
	s.account = &store.Account{ID: 1}

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	readFrame(t, client) // auth challenge

	w := packet.NewWriter()
	w.Uint64(999)
	writeFrame(t, client, protocol.CMSGPlayerLogin, w.Data())

	_ = client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after connection close")
	}

	require.Equal(t, StateCharSelect, s.State())
	require.Nil(t, s.player)
}
