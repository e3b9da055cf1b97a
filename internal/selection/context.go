package selection

import (
	"errors"
	"fmt"

	"innario/internal/hymnal"
)

var (
	// ErrInvalidContext marks selection requests whose context is unusable,
	// such as a festive Sunday with no festivity.
	ErrInvalidContext = errors.New("invalid selection context")
	// ErrInsufficientHymns marks contexts the catalog cannot satisfy.
	ErrInsufficientHymns = errors.New("insufficient hymns")
)

// Context describes the Sunday service a selection is planned for.
type Context struct {
	FirstSunday bool
	Festive     bool
	Festivity   hymnal.Festivity
}

// Validate rejects contexts that declare a festive Sunday without naming the
// festivity. A missing festivity is never defaulted.
func (c Context) Validate() error {
	if c.Festive && c.Festivity == hymnal.FestivityNone {
		return fmt.Errorf("%w: festivity is required when the sunday is festive", ErrInvalidContext)
	}
	if c.Festivity != hymnal.FestivityNone {
		switch c.Festivity {
		case hymnal.FestivityChristmas, hymnal.FestivityEaster:
		default:
			return fmt.Errorf("%w: unknown festivity %q", ErrInvalidContext, c.Festivity)
		}
	}
	return nil
}

// HymnCount returns how many hymns the service needs: three on the first
// Sunday of the month, four otherwise.
func (c Context) HymnCount() int {
	if c.FirstSunday {
		return 3
	}
	return 4
}

// EffectiveFestivity returns the festivity driving pool construction. A
// festivity set on a non-festive Sunday is ignored.
func (c Context) EffectiveFestivity() hymnal.Festivity {
	if !c.Festive {
		return hymnal.FestivityNone
	}
	return c.Festivity
}
