package release

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// BuildComparator imposes a total order over dotted build-number strings of
// the form MAJOR[.MINOR].
type BuildComparator struct {
	log *zap.Logger
}

// NewBuildComparator creates a comparator that logs malformed inputs.
func NewBuildComparator(log *zap.Logger) *BuildComparator {
	if log == nil {
		log = zap.NewNop()
	}
	return &BuildComparator{log: log}
}

// Compare returns -1, 0, or 1 ordering a against b lexicographically over
// (major, minor). Malformed segments are treated as 0 rather than failing,
// so a pair of unparseable inputs compares equal; callers must not read that
// as true equality.
func (c *BuildComparator) Compare(a, b string) int {
	amaj, amin := c.parse(a)
	bmaj, bmin := c.parse(b)
	switch {
	case amaj != bmaj:
		return sign(amaj - bmaj)
	case amin != bmin:
		return sign(amin - bmin)
	default:
		return 0
	}
}

func (c *BuildComparator) parse(s string) (major, minor int) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 2)
	if len(parts) > 0 && parts[0] != "" {
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			c.log.Warn("Malformed build number", zap.String("build", s))
			return 0, 0
		}
		major = v
	}
	if len(parts) == 2 {
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			c.log.Warn("Malformed build number", zap.String("build", s))
			return major, 0
		}
		minor = v
	}
	return major, minor
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
