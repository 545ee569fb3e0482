package protocol

// Opcode is a wire opcode. On the login stream it is a single byte; on the
// world stream it travels as a build-dependent width (u32 client->server,
// u16 server->client) but the numeric values below are the client's.
type Opcode uint32

// Login service opcodes. Only these three are dispatched; anything else is
// logged and dropped without tearing down the connection.
const (
	LogonChallenge Opcode = 0x00
	LogonProof     Opcode = 0x01
	RealmList      Opcode = 0x10
)

// World service opcodes, numeric values as used by the 1.12.1 and 2.4.3
// clients. The two builds agree on every opcode this emulator touches.
const (
	MsgNULLAction Opcode = 0x000

	CMSGCharCreate  Opcode = 0x036
	CMSGCharEnum    Opcode = 0x037
	CMSGCharDelete  Opcode = 0x038
	SMSGCharCreate  Opcode = 0x03A
	SMSGCharEnum    Opcode = 0x03B
	SMSGCharDelete  Opcode = 0x03C
	CMSGPlayerLogin Opcode = 0x03D

	SMSGNewWorld       Opcode = 0x03E
	SMSGLoginVerifyWorld Opcode = 0x236

	CMSGLogoutRequest  Opcode = 0x04A
	SMSGLogoutResponse Opcode = 0x04C
	SMSGLogoutComplete Opcode = 0x04D

	SMSGUpdateObject Opcode = 0x0A9

	CMSGPing Opcode = 0x1DC
	SMSGPong Opcode = 0x1DD

	CMSGAuthSession  Opcode = 0x1ED
	SMSGAuthChallenge Opcode = 0x1EC
	SMSGAuthResponse  Opcode = 0x1EE

	CMSGNameQuery         Opcode = 0x050
	SMSGNameQueryResponse Opcode = 0x051

	SMSGAccountDataTimes   Opcode = 0x209
	SMSGTutorialFlags      Opcode = 0x0FD
	SMSGLoginSetTimeSpeed  Opcode = 0x042
	SMSGInitialSpells      Opcode = 0x12A
	SMSGActionButtons      Opcode = 0x129
	SMSGInitializeFactions Opcode = 0x122
	SMSGTimeSyncReq        Opcode = 0x0DB
	CMSGTimeSyncResp       Opcode = 0x0DC

	CMSGStandStateChange Opcode = 0x0A8
	CMSGSetSelection     Opcode = 0x13D

	MSGMoveStartForward      Opcode = 0x0B5
	MSGMoveStartBackward     Opcode = 0x0B6
	MSGMoveStop              Opcode = 0x0B7
	MSGMoveStartStrafeLeft   Opcode = 0x0B8
	MSGMoveStartStrafeRight  Opcode = 0x0B9
	MSGMoveStopStrafe        Opcode = 0x0BA
	MSGMoveJump              Opcode = 0x0BB
	MSGMoveStartTurnLeft     Opcode = 0x0BC
	MSGMoveStartTurnRight    Opcode = 0x0BD
	MSGMoveStopTurn          Opcode = 0x0BE
	MSGMoveHeartbeat         Opcode = 0x0EE
	MSGMoveSetFacing         Opcode = 0x0DA
	MSGMoveFallLand          Opcode = 0x0C9
	MSGMoveStartSwim         Opcode = 0x0CA
	MSGMoveStopSwim          Opcode = 0x0CB
	MSGMoveSetRunMode        Opcode = 0x0D6
	MSGMoveSetWalkMode       Opcode = 0x0D7
)

// movementOpcodes is the set of opcodes the world session's handleMovement
// accepts; everything else that reaches the dispatcher and isn't one of the
// named handlers is silently ignored, matching the reference's permissive
// default.
var movementOpcodes = map[Opcode]bool{
	MSGMoveStartForward:     true,
	MSGMoveStartBackward:    true,
	MSGMoveStop:             true,
	MSGMoveStartStrafeLeft:  true,
	MSGMoveStartStrafeRight: true,
	MSGMoveStopStrafe:       true,
	MSGMoveJump:             true,
	MSGMoveStartTurnLeft:    true,
	MSGMoveStartTurnRight:   true,
	MSGMoveStopTurn:         true,
	MSGMoveHeartbeat:        true,
	MSGMoveSetFacing:        true,
	MSGMoveFallLand:         true,
	MSGMoveStartSwim:        true,
	MSGMoveStopSwim:         true,
	MSGMoveSetRunMode:       true,
	MSGMoveSetWalkMode:      true,
}

// IsMovementOpcode reports whether opcode carries a MoveInfo block and should
// update the session's cached position rather than being dispatched by name.
func IsMovementOpcode(opcode Opcode) bool {
	return movementOpcodes[opcode]
}
