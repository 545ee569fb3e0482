package world

import "github.com/retcode/AshEmu/internal/store"

// Player is a character brought into the world: its stored row plus the
// live position and zone/area derived from it on login.
type Player struct {
	Character *store.Character
	GUID      uint64
	ZoneID    uint32
	AreaID    uint32
}

// NewPlayer wraps a stored character for the session, deriving zone/area
// from its race's starting position (characters never move zones in this
// emulator, so the start position is also the current one).
func NewPlayer(c *store.Character) *Player {
	start := GetStartPosition(c.Race)
	return &Player{
		Character: c,
		GUID:      uint64(c.ID),
		ZoneID:    start.ZoneID,
		AreaID:    start.AreaID,
	}
}

// displayIDs maps race and gender (0=male, 1=female) to a model display id.
var displayIDs = map[uint8][2]int32{
	1:  {49, 50},
	2:  {51, 52},
	3:  {53, 54},
	4:  {55, 56},
	5:  {57, 58},
	6:  {59, 60},
	7:  {1563, 1564},
	8:  {1478, 1479},
	10: {15476, 15475},
	11: {16125, 16126},
}

// DisplayID returns the model display id for a race/gender combination,
// defaulting to Human Male.
func DisplayID(race, gender uint8) int32 {
	ids, ok := displayIDs[race]
	if !ok {
		return 49
	}
	if gender == 0 {
		return ids[0]
	}
	return ids[1]
}

// factionTemplates maps race to its starting faction template id.
var factionTemplates = map[uint8]int32{
	1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6, 7: 115, 8: 116, 10: 1610, 11: 1629,
}

// FactionTemplate returns the faction template id for race, defaulting to
// the Human template.
func FactionTemplate(race uint8) int32 {
	if id, ok := factionTemplates[race]; ok {
		return id
	}
	return 1
}

// Power types: Mana=0, Rage=1, Focus=2, Energy=3.
const (
	powerMana   uint8 = 0
	powerRage   uint8 = 1
	powerFocus  uint8 = 2
	powerEnergy uint8 = 3
)

// classPowerType maps class id to its primary power type.
var classPowerType = map[uint8]uint8{
	1: powerRage, 2: powerMana, 3: powerMana, 4: powerEnergy,
	5: powerMana, 7: powerMana, 8: powerMana, 9: powerMana, 11: powerMana,
}

// PowerType returns the primary power type for a class, defaulting to Mana.
func PowerType(class uint8) uint8 {
	if pt, ok := classPowerType[class]; ok {
		return pt
	}
	return powerMana
}

// Health and power for a freshly created level-1 character. Rage starts
// empty with a 1000-point pool (displayed divided by ten); every other
// resource starts full at a 100-point pool.
const (
	startHealth    = 100
	startMaxHealth = 100
	rageMaxPower   = 1000
	otherMaxPower  = 100
)

// StartPower returns the current and max power values for class.
func StartPower(class uint8) (current, max int32) {
	if class == 1 {
		return 0, rageMaxPower
	}
	return otherMaxPower, otherMaxPower
}
