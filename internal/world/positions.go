package world

// StartPosition is a race's spawn point: map, zone, area, and orientation.
type StartPosition struct {
	Map         uint32
	ZoneID      uint32
	AreaID      uint32
	X, Y, Z     float32
	Orientation float32
}

// Race ids: 1=Human 2=Orc 3=Dwarf 4=NightElf 5=Undead 6=Tauren 7=Gnome
// 8=Troll 9=Goblin(unused) 10=BloodElf(TBC) 11=Draenei(TBC).
var startPositions = map[uint8]StartPosition{
	1: {Map: 0, ZoneID: 12, AreaID: 9, X: -8949.95, Y: -132.493, Z: 83.5312, Orientation: 0},
	2: {Map: 1, ZoneID: 14, AreaID: 363, X: -618.518, Y: -4251.67, Z: 38.718, Orientation: 0},
	3: {Map: 0, ZoneID: 1, AreaID: 132, X: -6240.32, Y: 331.033, Z: 382.758, Orientation: 6.17716},
	4: {Map: 1, ZoneID: 141, AreaID: 188, X: 10311.3, Y: 832.463, Z: 1326.41, Orientation: 5.69632},
	5: {Map: 0, ZoneID: 85, AreaID: 154, X: 1676.71, Y: 1678.31, Z: 121.67, Orientation: 2.70526},
	6: {Map: 1, ZoneID: 215, AreaID: 222, X: -2917.58, Y: -257.98, Z: 52.9968, Orientation: 0},
	7: {Map: 0, ZoneID: 1, AreaID: 132, X: -6240.32, Y: 331.033, Z: 382.758, Orientation: 6.17716},
	8: {Map: 1, ZoneID: 14, AreaID: 363, X: -618.518, Y: -4251.67, Z: 38.718, Orientation: 0},
	// 9 (Goblin) is unused; falls through to the Human default below.
	10: {Map: 530, ZoneID: 3430, AreaID: 3431, X: 10349.6, Y: -6357.29, Z: 33.4026, Orientation: 5.31605},
	11: {Map: 530, ZoneID: 3524, AreaID: 3526, X: -3961.64, Y: -13931.2, Z: 100.615, Orientation: 2.08364},
}

// GetStartPosition returns the spawn point for race, defaulting to Human
// for an unknown or unused (Goblin) race id.
func GetStartPosition(race uint8) StartPosition {
	if pos, ok := startPositions[race]; ok {
		return pos
	}
	return startPositions[1]
}
