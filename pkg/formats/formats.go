// Package formats provides parsers for A.I.M. game file formats.
package formats

// Note: MOD (model container) is implemented in mod.go
// Note: TM (texture) is implemented in tm.go, its block codec in dxt5.go
// Note: MMO (map objects) is implemented in mmo.go

// GameVariant selects between the layouts of the two game releases.
type GameVariant int

const (
	GameAim1 GameVariant = iota // A.I.M.
	GameAim2                    // A.I.M. 2: Clan Wars
)

// String returns the variant name used in configuration files.
func (g GameVariant) String() string {
	switch g {
	case GameAim1:
		return "aim1"
	case GameAim2:
		return "aim2"
	default:
		return "unknown"
	}
}

// ParseGameVariant parses "aim1" or "aim2".
func ParseGameVariant(s string) (GameVariant, bool) {
	switch s {
	case "aim1", "":
		return GameAim1, true
	case "aim2", "m2":
		return GameAim2, true
	}
	return GameAim1, false
}
