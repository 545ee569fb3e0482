package world

import (
	"context"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // protocol mandates SHA-1 digest verification
	"crypto/subtle"
	"encoding/binary"
	"io"
	"net"
	"strings"
	"time"

	"github.com/retcode/AshEmu/internal/headercipher"
	"github.com/retcode/AshEmu/internal/logging"
	"github.com/retcode/AshEmu/internal/packet"
	"github.com/retcode/AshEmu/internal/protocol"
	"github.com/retcode/AshEmu/internal/store"
)

// State is a world session's position in the post-connect state machine.
type State int

const (
	StateInit State = iota
	StateAuthed
	StateCharSelect
	StateInWorld
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAuthed:
		return "AUTHED"
	case StateCharSelect:
		return "CHAR_SELECT"
	case StateInWorld:
		return "IN_WORLD"
	default:
		return "UNKNOWN"
	}
}

// Session drives one world connection end to end: the auth-session
// handshake, character selection, and, once in world, opcode dispatch and
// the logout/disconnect position-save path. One goroutine per connection,
// strictly sequential — no session field is touched from more than one
// goroutine at a time.
type Session struct {
	conn   net.Conn
	store  store.Store
	log    *logging.Logger
	build  protocol.Build
	tbc    bool
	cipher *headercipher.Cipher

	state      State
	account    *store.Account
	serverSeed uint32

	player         *Player
	timeSyncCtr    uint32
}

// NewSession constructs a session bound to an accepted connection.
func NewSession(conn net.Conn, st store.Store, log *logging.Logger, build protocol.Build) *Session {
	return &Session{
		conn:  conn,
		store: st,
		log:   log,
		build: build,
		tbc:   build == protocol.BuildTBC,
		state: StateInit,
	}
}

// State returns the session's current state-machine position.
func (s *Session) State() State { return s.state }

// Run drives the session until the connection closes, persisting the
// player's last known position if it disconnects while in world.
func (s *Session) Run(ctx context.Context) {
	addr := s.conn.RemoteAddr().String()
	s.log.Info("world client connected", map[string]any{"remote": addr})

	if err := s.sendAuthChallenge(); err != nil {
		s.log.Error("failed to send auth challenge", map[string]any{"remote": addr, "error": err.Error()})
		_ = s.conn.Close()
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
			return
		default:
		}

		opcode, payload, err := s.readPacket()
		if err != nil {
			break
		}
		s.dispatch(ctx, opcode, payload)
	}

	if s.state == StateInWorld && s.player != nil {
		c := s.player.Character
		if _, err := s.store.SetPosition(ctx, c.ID, c.Map, c.X, c.Y, c.Z, c.O); err != nil {
			s.log.Error("failed to persist position on disconnect", map[string]any{"character_id": c.ID, "error": err.Error()})
		}
	}

	s.log.Info("world client disconnected", map[string]any{"remote": addr})
}

// readPacket reads and decrypts one client->server frame: a 6-byte header
// (u16 big-endian size, u32 little-endian opcode) followed by size-4 bytes
// of payload.
func (s *Session) readPacket() (protocol.Opcode, []byte, error) {
	header := make([]byte, 6)
	if _, err := io.ReadFull(s.conn, header); err != nil {
		return 0, nil, err
	}
	if s.cipher != nil {
		s.cipher.Decrypt(header)
	}

	size := binary.BigEndian.Uint16(header[0:2])
	opcode := protocol.Opcode(binary.LittleEndian.Uint32(header[2:6]))

	payloadSize := 0
	if size > 4 {
		payloadSize = int(size) - 4
	}
	payload := make([]byte, payloadSize)
	if payloadSize > 0 {
		if _, err := io.ReadFull(s.conn, payload); err != nil {
			return 0, nil, err
		}
	}
	return opcode, payload, nil
}

// sendPacket writes one server->client frame: a 4-byte header (u16
// big-endian size, u16 little-endian opcode), encrypted if the cipher is
// keyed, followed by the plaintext payload.
func (s *Session) sendPacket(opcode protocol.Opcode, payload []byte) error {
	size := uint16(len(payload) + 2)
	header := make([]byte, 4)
	binary.BigEndian.PutUint16(header[0:2], size)
	binary.LittleEndian.PutUint16(header[2:4], uint16(opcode))

	if s.cipher != nil {
		s.cipher.Encrypt(header)
	}

	if _, err := s.conn.Write(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := s.conn.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) sendAuthChallenge() error {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return err
	}
	s.serverSeed = binary.LittleEndian.Uint32(seed[:])

	w := packet.NewWriter()
	w.Uint32(s.serverSeed)
	return s.sendPacket(protocol.SMSGAuthChallenge, w.Data())
}

// dispatch routes one decoded packet to its handler. Unknown opcodes, and
// malformed packets after authentication, are logged and dropped without
// tearing down the connection, matching the reference's tolerance for
// benign client oddities.
func (s *Session) dispatch(ctx context.Context, opcode protocol.Opcode, payload []byte) {
	switch opcode {
	case protocol.CMSGAuthSession:
		s.handleAuthSession(ctx, payload)
	case protocol.CMSGCharEnum:
		s.handleCharEnum(ctx)
	case protocol.CMSGCharCreate:
		s.handleCharCreate(ctx, payload)
	case protocol.CMSGCharDelete:
		s.handleCharDelete(ctx, payload)
	case protocol.CMSGPlayerLogin:
		s.handlePlayerLogin(ctx, payload)
	case protocol.CMSGPing:
		s.handlePing(payload)
	case protocol.CMSGNameQuery:
		s.handleNameQuery(ctx, payload)
	case protocol.CMSGLogoutRequest:
		s.handleLogoutRequest()
	case protocol.CMSGTimeSyncResp, protocol.CMSGStandStateChange, protocol.CMSGSetSelection:
		// silently ignored, matching the reference
	default:
		if protocol.IsMovementOpcode(opcode) {
			s.handleMovement(payload)
		}
	}
}

const worldAuthOK = 0x0C
const worldAuthUnknownAccount = 0x15
const worldAuthFailed = 0x0D

func (s *Session) handleAuthSession(ctx context.Context, payload []byte) {
	r := packet.NewReader(payload)
	r.Uint32() // client build
	r.Uint32() // server id
	username := strings.ToUpper(r.CString())
	clientSeed := r.Uint32()
	clientDigest := r.Bytes(20)

	s.log.Info("auth session", map[string]any{"username": username})

	account, result, err := s.store.GetAccount(ctx, username)
	if err != nil || result != store.OK || !account.HasSessionKey {
		s.log.Error("no session key for account", map[string]any{"username": username})
		w := packet.NewWriter()
		w.Uint8(worldAuthUnknownAccount)
		_ = s.sendPacket(protocol.SMSGAuthResponse, w.Data())
		_ = s.conn.Close()
		return
	}

	h := sha1.New() //nolint:gosec
	h.Write([]byte(username))
	var zero [4]byte
	h.Write(zero[:])
	var seedBuf [4]byte
	binary.LittleEndian.PutUint32(seedBuf[:], clientSeed)
	h.Write(seedBuf[:])
	binary.LittleEndian.PutUint32(seedBuf[:], s.serverSeed)
	h.Write(seedBuf[:])
	h.Write(account.SessionKey[:])
	expected := h.Sum(nil)

	if subtle.ConstantTimeCompare(clientDigest, expected) != 1 {
		s.log.Error("invalid auth digest", map[string]any{"username": username})
		w := packet.NewWriter()
		w.Uint8(worldAuthFailed)
		_ = s.sendPacket(protocol.SMSGAuthResponse, w.Data())
		_ = s.conn.Close()
		return
	}

	if s.tbc {
		s.cipher = headercipher.NewTBC(account.SessionKey)
	} else {
		s.cipher = headercipher.NewVanilla(account.SessionKey)
	}
	s.account = account

	w := packet.NewWriter()
	w.Uint8(worldAuthOK)
	w.Uint32(0) // billing time remaining
	w.Uint8(0)  // billing plan flags
	w.Uint32(0) // billing time rested
	_ = s.sendPacket(protocol.SMSGAuthResponse, w.Data())

	s.state = StateAuthed
}

func (s *Session) handleCharEnum(ctx context.Context) {
	chars, err := s.store.GetCharacters(ctx, s.account.ID)
	if err != nil {
		s.log.Error("char enum store failure", map[string]any{"error": err.Error()})
		return
	}

	w := packet.NewWriter()
	w.Uint8(uint8(len(chars)))
	for _, c := range chars {
		w.Uint64(uint64(c.ID))
		w.CString(c.Name)
		w.Uint8(c.Race)
		w.Uint8(c.Class)
		w.Uint8(c.Gender)
		w.Uint8(c.Skin)
		w.Uint8(c.Face)
		w.Uint8(c.HairStyle)
		w.Uint8(c.HairColor)
		w.Uint8(c.FacialHair)
		w.Uint8(uint8(c.Level))
		w.Uint32(c.Map) // zone (approximated by map, matching the reference)
		w.Uint32(c.Map)
		w.Float32(c.X)
		w.Float32(c.Y)
		w.Float32(c.Z)
		w.Uint32(0) // guild id
		w.Uint32(0) // character flags
		w.Uint8(0)  // first login
		w.Uint32(0) // pet display id
		w.Uint32(0) // pet level
		w.Uint32(0) // pet family
		for i := 0; i < 20; i++ {
			w.Uint32(0) // equipment display id
			w.Uint8(0)  // equipment inventory type
		}
	}
	_ = s.sendPacket(protocol.SMSGCharEnum, w.Data())
	s.state = StateCharSelect
}

const (
	charCreateSuccess  = 0x28
	charCreateFailed   = 0x2E
	charCreateNameInUse = 0x2F
	charDeleteSuccess  = 0x3A
)

func (s *Session) handleCharCreate(ctx context.Context, payload []byte) {
	r := packet.NewReader(payload)
	name := r.CString()
	race := r.Uint8()
	class := r.Uint8()
	gender := r.Uint8()
	skin := r.Uint8()
	face := r.Uint8()
	hairStyle := r.Uint8()
	hairColor := r.Uint8()
	facialHair := r.Uint8()

	s.log.Info("character create", map[string]any{"name": name, "race": race, "class": class})

	start := GetStartPosition(race)
	c := &store.Character{
		AccountID:  s.account.ID,
		Name:       name,
		Race:       race,
		Class:      class,
		Gender:     gender,
		Skin:       skin,
		Face:       face,
		HairStyle:  hairStyle,
		HairColor:  hairColor,
		FacialHair: facialHair,
		Level:      1,
		Map:        start.Map,
		X:          start.X,
		Y:          start.Y,
		Z:          start.Z,
		O:          start.Orientation,
	}

	_, result, err := s.store.CreateCharacter(ctx, c)

	w := packet.NewWriter()
	switch {
	case result == store.AlreadyExists:
		w.Uint8(charCreateNameInUse)
	case err != nil || result != store.OK:
		w.Uint8(charCreateFailed)
	default:
		s.log.Info("character created", map[string]any{"name": name})
		w.Uint8(charCreateSuccess)
	}
	_ = s.sendPacket(protocol.SMSGCharCreate, w.Data())
}

func (s *Session) handleCharDelete(ctx context.Context, payload []byte) {
	r := packet.NewReader(payload)
	guid := r.Uint64()
	if _, err := s.store.DeleteCharacter(ctx, int64(guid)); err != nil {
		s.log.Error("char delete store failure", map[string]any{"error": err.Error()})
	}
	w := packet.NewWriter()
	w.Uint8(charDeleteSuccess)
	_ = s.sendPacket(protocol.SMSGCharDelete, w.Data())
}

func (s *Session) handlePlayerLogin(ctx context.Context, payload []byte) {
	r := packet.NewReader(payload)
	guid := r.Uint64()

	c, result, err := s.store.GetCharacter(ctx, int64(guid))
	if err != nil || result != store.OK {
		s.log.Error("player login: character not found", map[string]any{"guid": guid})
		return
	}

	s.player = NewPlayer(c)

	s.log.Info("player login", map[string]any{"name": c.Name})

	s.sendLoginVerifyWorld()
	s.sendAccountDataTimes()
	s.sendTutorialFlags()
	s.sendLoginSetTimeSpeed()
	s.sendInitialSpells()
	s.sendActionButtons()
	s.sendInitializeFactions()
	s.sendUpdateObject()
	s.sendTimeSyncReq()

	s.state = StateInWorld
}

func (s *Session) sendLoginVerifyWorld() {
	c := s.player.Character
	w := packet.NewWriter()
	w.Uint32(c.Map)
	w.Float32(c.X)
	w.Float32(c.Y)
	w.Float32(c.Z)
	w.Float32(c.O)
	_ = s.sendPacket(protocol.SMSGLoginVerifyWorld, w.Data())
}

func (s *Session) sendAccountDataTimes() {
	w := packet.NewWriter()
	for i := 0; i < 32; i++ {
		w.Uint32(0)
	}
	_ = s.sendPacket(protocol.SMSGAccountDataTimes, w.Data())
}

func (s *Session) sendTutorialFlags() {
	w := packet.NewWriter()
	for i := 0; i < 8; i++ {
		w.Uint32(0xFFFFFFFF)
	}
	_ = s.sendPacket(protocol.SMSGTutorialFlags, w.Data())
}

// packGameTime packs now into the client's compact game-time encoding.
func packGameTime(now time.Time) uint32 {
	minute := uint32(now.Minute())
	hour := uint32(now.Hour())
	weekday := uint32(now.Weekday())
	day := uint32(now.Day() - 1)
	month := uint32(now.Month() - 1)
	year := uint32(now.Year() - 2000)
	return minute | (hour << 6) | (weekday << 11) | (day << 14) | (month << 20) | (year << 24)
}

func (s *Session) sendLoginSetTimeSpeed() {
	w := packet.NewWriter()
	w.Uint32(packGameTime(time.Now()))
	w.Float32(0.01666667)
	_ = s.sendPacket(protocol.SMSGLoginSetTimeSpeed, w.Data())
}

func (s *Session) sendInitialSpells() {
	w := packet.NewWriter()
	w.Uint8(0)
	w.Uint16(0)
	w.Uint16(0)
	_ = s.sendPacket(protocol.SMSGInitialSpells, w.Data())
}

func (s *Session) sendActionButtons() {
	w := packet.NewWriter()
	for i := 0; i < 120; i++ {
		w.Uint32(0)
	}
	_ = s.sendPacket(protocol.SMSGActionButtons, w.Data())
}

func (s *Session) sendInitializeFactions() {
	w := packet.NewWriter()
	w.Uint32(64)
	for i := 0; i < 64; i++ {
		w.Uint8(0)
		w.Uint32(0)
	}
	_ = s.sendPacket(protocol.SMSGInitializeFactions, w.Data())
}

func (s *Session) sendUpdateObject() {
	payload := BuildCreateSelfPacket(s.player, s.tbc)
	_ = s.sendPacket(protocol.SMSGUpdateObject, payload)
}

func (s *Session) sendTimeSyncReq() {
	w := packet.NewWriter()
	w.Uint32(s.timeSyncCtr)
	s.timeSyncCtr++
	_ = s.sendPacket(protocol.SMSGTimeSyncReq, w.Data())
}

func (s *Session) handlePing(payload []byte) {
	r := packet.NewReader(payload)
	ping := r.Uint32()
	r.Uint32() // latency, unused

	w := packet.NewWriter()
	w.Uint32(ping)
	_ = s.sendPacket(protocol.SMSGPong, w.Data())
}

func (s *Session) handleNameQuery(ctx context.Context, payload []byte) {
	r := packet.NewReader(payload)
	guid := r.Uint64()

	c, result, err := s.store.GetCharacter(ctx, int64(guid))

	w := packet.NewWriter()
	w.Uint64(guid)
	if err == nil && result == store.OK {
		w.CString(c.Name)
		w.Uint8(0) // realm name, empty = same realm
		w.Uint32(uint32(c.Race))
		w.Uint32(uint32(c.Gender))
		w.Uint32(uint32(c.Class))
	} else {
		w.CString("Unknown")
		w.Uint8(0)
		w.Uint32(0)
		w.Uint32(0)
		w.Uint32(0)
	}
	_ = s.sendPacket(protocol.SMSGNameQueryResponse, w.Data())
}

func (s *Session) handleLogoutRequest() {
	w := packet.NewWriter()
	w.Uint32(0) // reason: success
	w.Uint8(1)  // instant logout
	_ = s.sendPacket(protocol.SMSGLogoutResponse, w.Data())
	_ = s.sendPacket(protocol.SMSGLogoutComplete, nil)

	s.state = StateCharSelect
	s.player = nil
}

func (s *Session) handleMovement(payload []byte) {
	if s.player == nil || len(payload) < 24 {
		return
	}
	r := packet.NewReader(payload)
	r.Uint32() // move flags
	r.Uint32() // timestamp
	x := r.Float32()
	y := r.Float32()
	z := r.Float32()
	o := r.Float32()

	c := s.player.Character
	c.X, c.Y, c.Z, c.O = x, y, z, o
}
