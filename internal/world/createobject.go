package world

import (
	"time"

	"github.com/retcode/AshEmu/internal/packet"
)

// movement speeds shared by both builds; TBC additionally carries a
// flight/flight-back pair, filled with the run/run-back values, which the
// vanilla movement block does not have.
const (
	speedWalk     = 2.5
	speedRun      = 7.0
	speedRunBack  = 4.5
	speedSwim     = 4.722222
	speedSwimBack = 2.5
	speedTurn     = 3.141593
)

func writeMovementBlock(w *packet.Writer, p *Player, tbc bool) {
	w.Uint32(0) // movement flags: MOVEFLAG_NONE
	if tbc {
		w.Uint8(0) // extra flags, TBC addition
	}
	w.Uint32(uint32(time.Now().UnixMilli()))

	w.Float32(p.Character.X)
	w.Float32(p.Character.Y)
	w.Float32(p.Character.Z)
	w.Float32(p.Character.O)

	w.Uint32(0) // fall time

	w.Float32(speedWalk)
	w.Float32(speedRun)
	w.Float32(speedRunBack)
	w.Float32(speedSwim)
	w.Float32(speedSwimBack)
	if tbc {
		w.Float32(speedRun)     // flight speed
		w.Float32(speedRunBack) // flight back speed
	}
	w.Float32(speedTurn)
}

// BuildCreateSelfPacket assembles the SMSG_UPDATE_OBJECT "create self"
// payload for a just-logged-in player: one update block describing its own
// player object, populated with the minimum field set the client needs to
// render and accept input.
func BuildCreateSelfPacket(p *Player, tbc bool) []byte {
	w := packet.NewWriter()

	w.Uint32(1) // block count
	w.Uint8(0)  // has transport

	w.Uint8(updateTypeCreateObject2)
	w.PackedGUID(p.GUID)
	w.Uint8(typeIDPlayer)

	flags := uint8(updateFlagLiving | updateFlagHasPosition | updateFlagSelf)
	if tbc {
		flags |= updateFlagHighGUID
	}
	w.Uint8(flags)

	writeMovementBlock(w, p, tbc)

	if tbc {
		w.Uint32(0) // HIGHGUID_PLAYER high part
	}

	builder := buildPlayerFields(p, tbc)
	builder.Build(w)

	return w.Data()
}

func buildPlayerFields(p *Player, tbc bool) *UpdateBuilder {
	f := fieldsFor(tbc)
	c := p.Character
	b := NewUpdateBuilder()

	b.SetGUID(f.objectGUID, p.GUID)
	b.SetUint32(f.objectType, typeObject|typeUnit|typePlayer)
	b.SetFloat(f.objectScale, 1.0)

	power, maxPower := StartPower(c.Class)
	b.SetInt32(f.unitHealth, startHealth)
	b.SetInt32(f.unitMaxHealth, startMaxHealth)
	b.SetInt32(f.unitPower1, power)
	b.SetInt32(f.unitMaxPower1, maxPower)
	b.SetInt32(f.unitLevel, int32(c.Level))
	b.SetInt32(f.unitFactionTemplate, FactionTemplate(c.Race))

	b.SetByte(f.unitBytes0, 0, c.Race)
	b.SetByte(f.unitBytes0, 1, c.Class)
	b.SetByte(f.unitBytes0, 2, c.Gender)
	b.SetByte(f.unitBytes0, 3, PowerType(c.Class))

	b.SetUint32(f.unitFlags, unitFlagPlayerControlled)

	displayID := DisplayID(c.Race, c.Gender)
	b.SetInt32(f.unitDisplayID, displayID)
	b.SetInt32(f.unitNativeDisplayID, displayID)

	b.SetFloat(f.unitBoundingRadius, 0.389)
	b.SetFloat(f.unitCombatReach, 1.5)

	b.SetFloat(f.unitMinDamage, 1.0)
	b.SetFloat(f.unitMaxDamage, 2.0)
	b.SetUint32(f.unitBaseAttackTime, 2000)
	b.SetUint32(f.unitBaseAttackTime+1, 2000)

	b.SetFloat(f.unitModCastSpeed, 1.0)

	for i := 0; i < 5; i++ {
		b.SetInt32(f.unitStat0+i, 20)
	}

	b.SetInt32(f.unitBaseHealth, startMaxHealth)
	b.SetInt32(f.unitBaseMana, maxPower)

	b.SetByte(f.unitBytes1, 0, 0) // standstate: standing

	b.SetUint32(f.playerFlags, 0)
	b.SetByte(f.playerBytes, 0, c.Skin)
	b.SetByte(f.playerBytes, 1, c.Face)
	b.SetByte(f.playerBytes, 2, c.HairStyle)
	b.SetByte(f.playerBytes, 3, c.HairColor)
	b.SetByte(f.playerBytes2, 0, c.FacialHair)
	b.SetByte(f.playerBytes3, 0, c.Gender)

	b.SetUint32(f.playerXP, 0)
	b.SetUint32(f.playerNextLevelXP, 400)
	b.SetUint32(f.playerCharPoints1, 0)
	b.SetUint32(f.playerCharPoints2, 2)
	b.SetFloat(f.playerBlockPct, 0)
	b.SetFloat(f.playerDodgePct, 0)
	b.SetFloat(f.playerParryPct, 0)
	b.SetFloat(f.playerCritPct, 0)
	b.SetFloat(f.playerRangedCritPct, 0)
	b.SetUint32(f.playerRestXP, 0)
	b.SetUint32(f.playerCoinage, 0)

	if tbc {
		b.SetByte(f.unitBytes2, 0, 0)
		b.SetByte(f.unitBytes2, 1, 0x28)

		for i := 0; i < 7; i++ {
			b.SetInt32(f.unitResistances+i, 0)
		}
		b.SetInt32(f.unitAttackPower, 0)
		b.SetInt32(f.unitAttackPowerMods, 0)
		b.SetFloat(f.unitAttackPowerMult, 1.0)
		b.SetInt32(f.unitRangedAP, 0)
		b.SetInt32(f.unitRangedAPMods, 0)
		b.SetFloat(f.unitRangedAPMult, 1.0)
		b.SetFloat(f.unitMinRangedDamage, 0)
		b.SetFloat(f.unitMaxRangedDamage, 0)

		for i := 0; i < 7; i++ {
			b.SetFloat(f.playerModDmgDonePct+i, 1.0)
		}
		b.SetInt32(f.playerWatchedFaction, -1)
		b.SetUint32(f.playerMaxLevel, 70)
	}

	return b
}
