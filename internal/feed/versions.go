package feed

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeep is how many versions of each release/preview line survive
const DefaultKeep = 50

// versionPattern picks the release/preview line of a version, e.g.
// "4.0.0-preview1" out of "4.0.0-preview1-00123"
var versionPattern = regexp.MustCompile(`(\d\.\d\.\d)-(\w+)`)

// VersionGroup is one release/preview line and its versions, newest first
type VersionGroup struct {
	Key      string
	Versions []string
}

// GroupVersions buckets versions by release/preview line. Keys keep the
// order they are first seen in; a version joins every group whose key it
// contains. Versions without a preview suffix belong to no group.
func GroupVersions(versions []string) []VersionGroup {
	var keys []string
	seen := make(map[string]bool)

	for _, v := range versions {
		for _, m := range versionPattern.FindAllStringSubmatch(v, -1) {
			key := m[1] + "-" + m[2]
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	groups := make([]VersionGroup, 0, len(keys))
	for _, key := range keys {
		var members []string
		for _, v := range versions {
			if strings.Contains(v, key) {
				members = append(members, v)
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(members)))
		groups = append(groups, VersionGroup{Key: key, Versions: members})
	}

	return groups
}

// VersionsToDelete returns every version beyond the newest keep of its
// group, without duplicates
func VersionsToDelete(versions []string, keep int) []string {
	if keep < 0 {
		keep = 0
	}

	var out []string
	seen := make(map[string]bool)
	for _, g := range GroupVersions(versions) {
		if len(g.Versions) <= keep {
			continue
		}
		for _, v := range g.Versions[keep:] {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
