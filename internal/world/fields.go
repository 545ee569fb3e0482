// Package world implements the world service: post-handshake session state
// machine, character reference data, and the sparse update-field assembler
// used to build the SMSG_UPDATE_OBJECT "create self" payload.
package world

// updateFields is the set of update-field indices this emulator needs to
// populate a create-self payload. The two builds diverge after
// UNIT_FIELD_FLAGS (TBC carries more aura slots and the FLAGS_2/POSSTAT/
// NEGSTAT rows vanilla never had), which shifts every field below that
// point; everything from OBJECT_FIELD_GUID through UNIT_FIELD_FLAGS is
// identical on both builds.
type updateFields struct {
	objectGUID  int
	objectType  int
	objectScale int

	unitHealth          int
	unitPower1          int
	unitMaxHealth       int
	unitMaxPower1       int
	unitLevel           int
	unitFactionTemplate int
	unitBytes0          int
	unitFlags           int
	unitBaseAttackTime  int
	unitBoundingRadius  int
	unitCombatReach     int
	unitDisplayID       int
	unitNativeDisplayID int
	unitMountDisplayID  int
	unitMinDamage       int
	unitMaxDamage       int
	unitOffhandMinDmg   int
	unitOffhandMaxDmg   int
	unitModCastSpeed    int
	unitBytes1          int
	unitStat0           int
	unitResistances     int
	unitBaseMana        int
	unitBaseHealth      int
	unitBytes2          int
	unitAttackPower     int
	unitAttackPowerMods int
	unitAttackPowerMult int
	unitRangedAP        int
	unitRangedAPMods    int
	unitRangedAPMult    int
	unitMinRangedDamage int
	unitMaxRangedDamage int

	playerFlags          int
	playerBytes          int
	playerBytes2         int
	playerBytes3         int
	playerXP             int
	playerNextLevelXP    int
	playerCharPoints1    int
	playerCharPoints2    int
	playerBlockPct       int
	playerDodgePct       int
	playerParryPct       int
	playerCritPct        int
	playerRangedCritPct  int
	playerRestXP         int
	playerCoinage        int
	playerModDmgDonePct  int // 2.4.3 only, 7 fields; zero on vanilla
	playerWatchedFaction int // 2.4.3 only; zero on vanilla
	playerMaxLevel       int // 2.4.3 only; zero on vanilla
}

// tbcFields are the 2.4.3 schema offsets, taken directly from the client's
// public TBC UpdateFields.h table.
var tbcFields = updateFields{
	objectGUID:  0x0000,
	objectType:  0x0002,
	objectScale: 0x0004,

	unitHealth:          0x0016,
	unitPower1:          0x0017,
	unitMaxHealth:       0x001C,
	unitMaxPower1:       0x001D,
	unitLevel:           0x0022,
	unitFactionTemplate: 0x0023,
	unitBytes0:          0x0024,
	unitFlags:           0x002E,
	unitBaseAttackTime:  0x0093,
	unitBoundingRadius:  0x0096,
	unitCombatReach:     0x0097,
	unitDisplayID:       0x0098,
	unitNativeDisplayID: 0x0099,
	unitMountDisplayID:  0x009A,
	unitMinDamage:       0x009B,
	unitMaxDamage:       0x009C,
	unitOffhandMinDmg:   0x009D,
	unitOffhandMaxDmg:   0x009E,
	unitBytes1:          0x009F,
	unitModCastSpeed:    0x00A6,
	unitStat0:           0x00AB,
	unitResistances:     0x00BA,
	unitBaseMana:        0x00CF,
	unitBaseHealth:      0x00D0,
	unitBytes2:          0x00D1,
	unitAttackPower:     0x00D2,
	unitAttackPowerMods: 0x00D3,
	unitAttackPowerMult: 0x00D4,
	unitRangedAP:        0x00D5,
	unitRangedAPMods:    0x00D6,
	unitRangedAPMult:    0x00D7,
	unitMinRangedDamage: 0x00D8,
	unitMaxRangedDamage: 0x00D9,

	playerFlags:          0x00EB,
	playerBytes:          0x00EE,
	playerBytes2:         0x00EF,
	playerBytes3:         0x00F0,
	playerXP:             0x0387,
	playerNextLevelXP:    0x0388,
	playerCharPoints1:    0x0509,
	playerCharPoints2:    0x050A,
	playerBlockPct:       0x050D,
	playerDodgePct:       0x050E,
	playerParryPct:       0x050F,
	playerCritPct:        0x0512,
	playerRangedCritPct:  0x0513,
	playerRestXP:         0x059D,
	playerCoinage:        0x059E,
	playerModDmgDonePct:  0x05AD,
	playerWatchedFaction: 0x05D8,
	playerMaxLevel:       0x0607,
}

// vanillaFields are the 1.12.1 schema offsets. The object/unit fields up to
// and including UNIT_FIELD_FLAGS match tbcFields exactly; everything after
// that shifts because vanilla carries 48 aura slots (TBC: 56) and has no
// FLAGS_2/POSSTAT/NEGSTAT rows.
var vanillaFields = updateFields{
	objectGUID:  0x0000,
	objectType:  0x0002,
	objectScale: 0x0004,

	unitHealth:          0x0016,
	unitPower1:          0x0017,
	unitMaxHealth:       0x001C,
	unitMaxPower1:       0x001D,
	unitLevel:           0x0022,
	unitFactionTemplate: 0x0023,
	unitBytes0:          0x0024,
	unitFlags:           0x002E,
	unitBaseAttackTime:  0x007E,
	unitBoundingRadius:  0x0081,
	unitCombatReach:     0x0082,
	unitDisplayID:       0x0083,
	unitNativeDisplayID: 0x0084,
	unitMountDisplayID:  0x0085,
	unitMinDamage:       0x0086,
	unitMaxDamage:       0x0087,
	unitOffhandMinDmg:   0x0088,
	unitOffhandMaxDmg:   0x0089,
	unitBytes1:          0x008A,
	unitModCastSpeed:    0x0091,
	unitStat0:           0x0096,
	unitResistances:     0x009B,
	unitBaseMana:        0x00B0,
	unitBaseHealth:      0x00B1,
	unitBytes2:          0x00B2,
	unitAttackPower:     0x00B3,
	unitAttackPowerMods: 0x00B4,
	unitAttackPowerMult: 0x00B5,
	unitRangedAP:        0x00B6,
	unitRangedAPMods:    0x00B7,
	unitRangedAPMult:    0x00B8,
	unitMinRangedDamage: 0x00B9,
	unitMaxRangedDamage: 0x00BA,

	playerFlags:         0x00CB,
	playerBytes:         0x00CE,
	playerBytes2:        0x00CF,
	playerBytes3:        0x00D0,
	playerXP:            0x02EC,
	playerNextLevelXP:   0x02ED,
	playerCharPoints1:   0x046E,
	playerCharPoints2:   0x046F,
	playerBlockPct:      0x0472,
	playerDodgePct:      0x0473,
	playerParryPct:      0x0474,
	playerCritPct:       0x0475,
	playerRangedCritPct: 0x0476,
	playerRestXP:        0x04B7,
	playerCoinage:       0x04B8,
	// playerModDmgDonePct, playerWatchedFaction, playerMaxLevel: left at
	// zero, unused on vanilla (TBC-only fields per the movement-block and
	// populated-fields tables).
}

// fieldsFor picks the schema for a build.
func fieldsFor(tbc bool) updateFields {
	if tbc {
		return tbcFields
	}
	return vanillaFields
}

// Object/unit type and update-flag bits used when assembling the
// create-object payload.
const (
	typeObject = 0x0001
	typeUnit   = 0x0008
	typePlayer = 0x0010

	typeIDPlayer = 4

	updateFlagSelf        = 0x01
	updateFlagHighGUID    = 0x10
	updateFlagLiving      = 0x20
	updateFlagHasPosition = 0x40

	updateTypeCreateObject2 = 3

	unitFlagPlayerControlled = 0x00000008
)
