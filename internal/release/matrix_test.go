package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMatrixSize(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 3} {
		releases := make([]Release, 0, n)
		for i := 0; i < n; i++ {
			releases = append(releases, rel(string(rune('a'+i)), "24H2", "26100.1"))
		}
		m := BuildMatrix(releases)
		require.Len(t, m.Include, 6*n)
	}
}

func TestBuildMatrixEntries(t *testing.T) {
	t.Parallel()

	r := Release{
		BuildID:     "uuid-1",
		BuildNumber: "26100.2033",
		Version:     "24H2",
		Title:       "Windows 11, version 24H2 (OS Build 26100.2033)",
		ISOURL:      "https://example.com/win11.iso",
	}
	m := BuildMatrix([]Release{r})

	types := map[string]int{}
	editions := map[int]int{}
	for _, e := range m.Include {
		require.Equal(t, "24H2", e.Version)
		require.Equal(t, "26100.2033", e.Build)
		require.Equal(t, "https://example.com/win11.iso", e.ISOURL)
		require.Equal(t, "Windows_11,_version_24H2_OS_Build_26100.2033", e.Title)
		types[e.BuildType]++
		editions[e.Edition]++
	}
	require.Equal(t, map[string]int{"standard": 2, "core": 2, "nano": 2}, types)
	require.Equal(t, map[int]int{1: 3, 6: 3}, editions)

	for _, e := range m.Include {
		if e.Edition == 1 {
			require.Equal(t, "Home", e.EditionName)
		} else {
			require.Equal(t, "Pro", e.EditionName)
		}
	}
}
