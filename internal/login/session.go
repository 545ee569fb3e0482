// Package login implements the SRP-6 login service: a per-connection
// session state machine over the plain (unencrypted) "auth" framing that
// carries LOGON_CHALLENGE, LOGON_PROOF, and REALM_LIST.
package login

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/retcode/AshEmu/internal/config"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/packet"
	"github.com/retcode/AshEmu/internal/protocol"
	"github.com/retcode/AshEmu/internal/srp6"
	"github.com/retcode/AshEmu/internal/store"
)

// State is a login session's position in the SRP-6 handshake.
type State int

const (
	StateInit State = iota
	StateChallenged
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateChallenged:
		return "CHALLENGED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}

const (
	authSuccess              = 0x00
	authFailIncorrectPassword = 0x06
	authFailUnknownAccount   = 0x04
)

// Session drives one login connection end to end: LOGON_CHALLENGE,
// LOGON_PROOF, and REALM_LIST, in any order the client chooses except
// that a proof before a challenge has no engine to verify against.
// One goroutine per connection, strictly sequential.
type Session struct {
	conn  net.Conn
	store store.Store
	log   *logging.Logger
	cfg   config.LoginSettings

	state   State
	account *store.Account
	engine  *srp6.Engine
}

// NewSession constructs a session bound to an accepted connection.
func NewSession(conn net.Conn, st store.Store, log *logging.Logger, cfg config.LoginSettings) *Session {
	return &Session{
		conn:  conn,
		store: st,
		log:   log,
		cfg:   cfg,
		state: StateInit,
	}
}

// State returns the session's current state-machine position.
func (s *Session) State() State { return s.state }

// Run reads and dispatches opcode-tagged packets until the connection
// closes or the context is canceled.
func (s *Session) Run(ctx context.Context) {
	addr := s.conn.RemoteAddr().String()
	s.log.Info("login client connected", map[string]any{"remote": addr})

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
			return
		default:
		}

		n, err := s.conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				s.log.Debug("login read failed", map[string]any{"remote": addr, "error": err.Error()})
			}
			break
		}
		s.dispatch(ctx, buf[:n])
	}

	s.log.Info("login client disconnected", map[string]any{"remote": addr})
}

// dispatch routes one raw, opcode-tagged datagram. Unknown opcodes are
// logged and dropped; the connection stays open, matching the
// reference's tolerance for stray bytes.
func (s *Session) dispatch(ctx context.Context, data []byte) {
	if len(data) == 0 {
		return
	}

	switch protocol.Opcode(data[0]) {
	case protocol.LogonChallenge:
		s.handleLogonChallenge(ctx, data)
	case protocol.LogonProof:
		s.handleLogonProof(ctx, data)
	case protocol.RealmList:
		s.handleRealmList()
	default:
		s.log.Debug("unknown login opcode", map[string]any{"opcode": data[0]})
	}
}

// handleLogonChallenge parses the fixed-prefix challenge header
// (gamename|version|build|platform|os|locale|timezone|ip|user_len|user),
// looks up or auto-creates the account, and replies with the SRP-6
// challenge (B, g, N, salt).
func (s *Session) handleLogonChallenge(ctx context.Context, data []byte) {
	const fixedPrefix = 34
	if len(data) < fixedPrefix {
		s.log.Debug("logon challenge too short", map[string]any{"len": len(data)})
		return
	}

	usernameLen := int(data[fixedPrefix-1])
	if len(data) < fixedPrefix+usernameLen {
		s.log.Debug("logon challenge username truncated", map[string]any{"len": len(data)})
		return
	}

	username := strings.ToUpper(string(data[fixedPrefix : fixedPrefix+usernameLen]))
	s.log.Info("logon challenge", map[string]any{"username": username})

	account, result, err := s.store.GetAccount(ctx, username)
	switch {
	case err != nil && result != store.NotFound:
		s.log.Error("account lookup failed", map[string]any{"username": username, "error": err.Error()})
		return
	case result == store.NotFound:
		if !s.cfg.AutoCreateAccount {
			s.log.Info("unknown account, auto-create disabled", map[string]any{"username": username})
			return
		}
		salt, verifierLE, vErr := srp6.ComputeVerifier(username, username)
		if vErr != nil {
			s.log.Error("verifier generation failed", map[string]any{"username": username, "error": vErr.Error()})
			return
		}
		var salt32 [store.SaltSize]byte
		var verifier32 [store.VerifierSize]byte
		copy(salt32[:], salt[:])
		copy(verifier32[:], verifierLE)

		account, result, err = s.store.CreateAccount(ctx, username, salt32, verifier32)
		if err != nil || result != store.OK {
			s.log.Error("account auto-create failed", map[string]any{"username": username})
			return
		}
		s.log.Info("account auto-created", map[string]any{"username": username})
	}

	engine, err := srp6.New(username, account.Salt, account.Verifier[:])
	if err != nil {
		s.log.Error("srp6 engine init failed", map[string]any{"username": username, "error": err.Error()})
		return
	}
	s.engine = engine
	s.account = account

	w := packet.NewWriter()
	w.Uint8(0) // unknown
	w.Uint8(authSuccess)
	w.Bytes(engine.BBytes())
	w.Uint8(1) // g length
	w.Uint8(7) // g
	w.Uint8(32) // N length
	w.Bytes(srp6.NBytesLE())
	w.Bytes(account.Salt[:])
	w.Zeros(16) // CRC placeholder
	w.Uint8(0)  // security flags

	s.sendOpcode(protocol.LogonChallenge, w.Data())
	s.state = StateChallenged
}

// handleLogonProof reads A and M1, verifies the proof, persists the
// session key on success, and replies with M2 or a failure code.
func (s *Session) handleLogonProof(ctx context.Context, data []byte) {
	const minLen = 75
	if len(data) < minLen || s.engine == nil {
		s.log.Debug("logon proof too short or no pending challenge", map[string]any{"len": len(data)})
		return
	}

	a := data[1:33]
	m1 := data[33:53]

	m2, err := s.engine.VerifyProof(a, m1)
	if err != nil {
		s.log.Info("invalid proof", map[string]any{"username": s.account.Username})
		w := packet.NewWriter()
		w.Uint8(authFailIncorrectPassword)
		s.sendOpcode(protocol.LogonProof, w.Data())
		return
	}

	sessionKey, _ := s.engine.SessionKey()
	if _, err := s.store.UpdateSessionKey(ctx, s.account.ID, sessionKey); err != nil {
		s.log.Error("session key persist failed", map[string]any{"username": s.account.Username, "error": err.Error()})
	}

	s.log.Info("login successful", map[string]any{"username": s.account.Username})

	w := packet.NewWriter()
	w.Uint8(authSuccess)
	w.Bytes(m2)
	w.Uint32(0) // unknown, required for 1.12.1 clients
	s.sendOpcode(protocol.LogonProof, w.Data())

	s.state = StateAuthenticated
}

// handleRealmList emits the single configured realm entry, valid in any
// session state since clients query it before logging in too.
func (s *Session) handleRealmList() {
	inner := packet.NewWriter()
	inner.Uint32(0) // unknown
	inner.Uint16(1) // realm count

	inner.Uint8(0) // realm type/icon: Normal
	inner.Uint8(0) // lock
	inner.Uint8(0) // color
	inner.Uint8(0) // flags: online
	inner.CString(s.cfg.RealmName)
	inner.CString(s.cfg.RealmHost + ":" + strconv.Itoa(s.cfg.RealmPort))
	inner.Float32(0.0) // population
	inner.Uint8(0)      // character count
	inner.Uint8(1)      // timezone
	inner.Uint8(1)      // realm id

	inner.Uint16(0x0010) // footer

	w := packet.NewWriter()
	w.Uint8(uint8(protocol.RealmList))
	w.Uint16(uint16(len(inner.Data())))
	w.Bytes(inner.Data())

	if _, err := s.conn.Write(w.Data()); err != nil {
		s.log.Debug("realm list write failed", map[string]any{"error": err.Error()})
	}
}

// sendOpcode writes a one-byte opcode followed by payload, the login
// service's plain (unencrypted) framing.
func (s *Session) sendOpcode(opcode protocol.Opcode, payload []byte) {
	w := packet.NewWriter()
	w.Uint8(uint8(opcode))
	w.Bytes(payload)
	if _, err := s.conn.Write(w.Data()); err != nil {
		s.log.Debug("send failed", map[string]any{"error": err.Error()})
	}
}
