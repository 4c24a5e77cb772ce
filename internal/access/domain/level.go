// Package domain defines access levels, grants, groups and the snapshot used to resolve what a
// principal may do with a vault item.
package domain

// Level is a principal's access to an item. Levels are totally ordered:
// None < Read < Edit < Owner.
type Level string

const (
	LevelNone  Level = "none"
	LevelRead  Level = "read"
	LevelEdit  Level = "edit"
	LevelOwner Level = "owner"
)

func (l Level) rank() int {
	switch l {
	case LevelRead:
		return 1
	case LevelEdit:
		return 2
	case LevelOwner:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether l grants at least required. Unknown levels rank as None.
func (l Level) AtLeast(required Level) bool {
	return l.rank() >= required.rank()
}

// MaxLevel returns the highest of levels, or LevelNone when empty.
func MaxLevel(levels ...Level) Level {
	best := LevelNone
	for _, level := range levels {
		if level.rank() > best.rank() {
			best = level
		}
	}
	return best
}

// IsGrantable reports whether l may be stored on a grant. Owner is implicit and never granted.
func (l Level) IsGrantable() bool {
	return l == LevelRead || l == LevelEdit
}

// ParseGrantLevel validates a level supplied for a grant.
func ParseGrantLevel(s string) (Level, error) {
	level := Level(s)
	if !level.IsGrantable() {
		return "", ErrInvalidLevel
	}
	return level, nil
}
