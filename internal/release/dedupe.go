package release

// DedupeByID collapses candidates sharing a build id. Later entries overwrite
// earlier ones while keeping the first-seen position, so the result is stable
// for a given input order. Running it on its own output is a no-op.
func DedupeByID(in []Release) []Release {
	out := make([]Release, 0, len(in))
	index := make(map[string]int, len(in))
	for _, r := range in {
		if at, ok := index[r.BuildID]; ok {
			out[at] = r
			continue
		}
		index[r.BuildID] = len(out)
		out = append(out, r)
	}
	return out
}

// DedupeByVersion keeps one record per distinct version: the one whose build
// number compares greatest under cmp, ties keeping the first seen. The result
// is the active set that drives downstream builds; it caps one cycle at one
// build per version no matter how many the sources surfaced.
func DedupeByVersion(in []Release, cmp *BuildComparator) []Release {
	out := make([]Release, 0, len(in))
	index := make(map[string]int, len(in))
	for _, r := range in {
		at, ok := index[r.Version]
		if !ok {
			index[r.Version] = len(out)
			out = append(out, r)
			continue
		}
		if cmp.Compare(r.BuildNumber, out[at].BuildNumber) > 0 {
			out[at] = r
		}
	}
	return out
}
