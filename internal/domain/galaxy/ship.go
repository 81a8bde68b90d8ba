package galaxy

// Ship identifiers match the game's internal technology ids.
type Ship int

const (
	SmallCargo     Ship = 202
	LargeCargo     Ship = 203
	LightFighter   Ship = 204
	HeavyFighter   Ship = 205
	Cruiser        Ship = 206
	Battleship     Ship = 207
	ColonyShip     Ship = 208
	Recycler       Ship = 209
	EspionageProbe Ship = 210
	Bomber         Ship = 211
	SolarSatellite Ship = 212
	Destroyer      Ship = 213
	Deathstar      Ship = 214
	Battlecruiser  Ship = 215
	Reaper         Ship = 218
	Pathfinder     Ship = 219
)

type ShipStats struct {
	BaseSpeed    int
	BaseFuelRate int
	CargoSpace   int
}

// Stats carries the subset of per-ship game data the agent needs: drive
// base speed, base fuel consumption and cargo hold size.
var Stats = map[Ship]ShipStats{
	SmallCargo:     {BaseSpeed: 5000, BaseFuelRate: 10, CargoSpace: 5000},
	LargeCargo:     {BaseSpeed: 7500, BaseFuelRate: 50, CargoSpace: 25000},
	LightFighter:   {BaseSpeed: 12500, BaseFuelRate: 20, CargoSpace: 50},
	HeavyFighter:   {BaseSpeed: 10000, BaseFuelRate: 75, CargoSpace: 100},
	Cruiser:        {BaseSpeed: 15000, BaseFuelRate: 300, CargoSpace: 800},
	Battleship:     {BaseSpeed: 10000, BaseFuelRate: 500, CargoSpace: 1500},
	ColonyShip:     {BaseSpeed: 2500, BaseFuelRate: 1000, CargoSpace: 7500},
	Recycler:       {BaseSpeed: 2000, BaseFuelRate: 300, CargoSpace: 20000},
	EspionageProbe: {BaseSpeed: 100000000, BaseFuelRate: 1, CargoSpace: 5},
	Bomber:         {BaseSpeed: 4000, BaseFuelRate: 700, CargoSpace: 500},
	SolarSatellite: {BaseSpeed: 0, BaseFuelRate: 0, CargoSpace: 0},
	Destroyer:      {BaseSpeed: 5000, BaseFuelRate: 1000, CargoSpace: 2000},
	Deathstar:      {BaseSpeed: 100, BaseFuelRate: 1, CargoSpace: 1000000},
	Battlecruiser:  {BaseSpeed: 10000, BaseFuelRate: 250, CargoSpace: 750},
	Reaper:         {BaseSpeed: 7000, BaseFuelRate: 1100, CargoSpace: 10000},
	Pathfinder:     {BaseSpeed: 12000, BaseFuelRate: 300, CargoSpace: 10000},
}

func (s Ship) String() string {
	switch s {
	case SmallCargo:
		return "small_cargo"
	case LargeCargo:
		return "large_cargo"
	case LightFighter:
		return "light_fighter"
	case HeavyFighter:
		return "heavy_fighter"
	case Cruiser:
		return "cruiser"
	case Battleship:
		return "battleship"
	case ColonyShip:
		return "colony_ship"
	case Recycler:
		return "recycler"
	case EspionageProbe:
		return "espionage_probe"
	case Bomber:
		return "bomber"
	case SolarSatellite:
		return "solar_satellite"
	case Destroyer:
		return "destroyer"
	case Deathstar:
		return "deathstar"
	case Battlecruiser:
		return "battlecruiser"
	case Reaper:
		return "reaper"
	case Pathfinder:
		return "pathfinder"
	default:
		return "unknown_ship"
	}
}

// CanMove reports whether the ship type can leave a body at all.
func (s Ship) CanMove() bool {
	return s != SolarSatellite
}
