package release

import (
	"regexp"
	"strconv"
	"strings"
)

// VersionUnknown is returned when no heuristic matches.
const VersionUnknown = "Unknown"

// VersionInsiderPreview marks builds that only identify themselves as
// insider or preview releases.
const VersionInsiderPreview = "Insider-Preview"

var (
	explicitVersionRE = regexp.MustCompile(`(?i)version\s+(\d{2}H\d)`)
	bareVersionRE     = regexp.MustCompile(`(?i)\b(\d{2}H\d)\b`)
	parenBuildRE      = regexp.MustCompile(`\([^)]*?(\d{5})\.\d+[^)]*?\)`)
	majorSegmentRE    = regexp.MustCompile(`^(\d{5})(?:\.\d+)?$`)
)

type buildRange struct {
	lo, hi int
	label  string
}

// Ordered; first match wins. The trailing 23H2 row is shadowed by the 22H2
// row above it on purpose: the table order is part of the resolver contract
// and must not be reordered.
var buildRanges = []buildRange{
	{26100, 26199, "24H2"},
	{26200, 26219, "25H2"},
	{22621, 22999, "22H2"},
	{22631, 22999, "23H2"},
}

// ResolveVersion infers a normalized version label from a release title and
// build number. Heuristics are tried in order and the first match wins;
// unresolvable input yields VersionUnknown, never an error.
func ResolveVersion(title, buildNumber string) string {
	if m := explicitVersionRE.FindStringSubmatch(title); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := bareVersionRE.FindStringSubmatch(title); m != nil {
		return strings.ToUpper(m[1])
	}
	if label, ok := versionFromBuildToken(title, buildNumber); ok {
		return label
	}
	lower := strings.ToLower(title)
	if strings.Contains(lower, "insider") || strings.Contains(lower, "preview") {
		return VersionInsiderPreview
	}
	return VersionUnknown
}

func versionFromBuildToken(title, buildNumber string) (string, bool) {
	token := ""
	if m := parenBuildRE.FindStringSubmatch(title); m != nil {
		token = m[1]
	} else if m := majorSegmentRE.FindStringSubmatch(strings.TrimSpace(buildNumber)); m != nil {
		token = m[1]
	}
	if token == "" {
		return "", false
	}
	major, err := strconv.Atoi(token)
	if err != nil {
		return "", false
	}
	for _, r := range buildRanges {
		if major >= r.lo && major <= r.hi {
			return r.label, true
		}
	}
	return "", false
}
