package protocol

const (
	// Board geometry. Flat index = y*Cols + x.
	Rows      = 10
	Cols      = 17
	BoardSize = Rows * Cols

	// Cell values are uniform in [MinCellValue, MaxCellValue].
	MinCellValue = 1
	MaxCellValue = 9

	// Server defaults; the config file can override all of these.
	DefaultRoundSecs  = 120
	DefaultMaxPlayers = 8

	// Display names are trimmed then truncated to this many runes.
	MaxNameLen = 24
)
