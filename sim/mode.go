package sim

import (
	"errors"
	"fmt"
)

// Mode selects the neighbor search strategy of a tick. Modes are
// interchangeable between ticks; they differ only in speed.
type Mode uint8

const (
	ModeNaive     Mode = iota // brute-force scan of all particles
	ModeScattered             // uniform grid, reached through the sorted index table
	ModeCoherent              // uniform grid over buffers reordered by cell
)

// ErrUnknownMode is returned by ParseMode for names it does not recognize.
var ErrUnknownMode = errors.New("unknown mode")

var modeNames = [...]string{
	ModeNaive:     "naive",
	ModeScattered: "scattered",
	ModeCoherent:  "coherent",
}

// String returns the config name of the mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// usesGrid reports whether the mode builds the cell index.
func (m Mode) usesGrid() bool {
	return m == ModeScattered || m == ModeCoherent
}

// ParseMode maps a config name to a Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMode, name)
}
