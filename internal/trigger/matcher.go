// Package trigger decides which profile the current device set proposes
// and whether that proposal may be applied.
package trigger

import (
	"github.com/Zakay/AudioProfiles/internal/profile"
)

// Match is one winning trigger evaluation.
type Match struct {
	Profile    profile.Profile
	MatchCount int
	// PrimaryTriggerID is the first entry of the profile's own trigger
	// list that is currently present (list order, not discovery order).
	PrimaryTriggerID string
}

// BestMatch returns the profile whose trigger list has the largest
// intersection with the current device IDs, or nil when no profile
// matches at all.
//
// Ties keep the profile encountered first: profiles are evaluated in
// collection order, so list position is the stable, user-controllable
// tie-break, not an accident of iteration.
func BestMatch(profiles []profile.Profile, currentIDs map[string]struct{}) *Match {
	var best *Match

	for _, p := range profiles {
		if len(p.TriggerDeviceIDs) == 0 {
			continue
		}

		count := 0
		primary := ""
		for _, id := range p.TriggerDeviceIDs {
			if _, present := currentIDs[id]; !present {
				continue
			}
			count++
			if primary == "" {
				primary = id
			}
		}
		if count == 0 {
			continue
		}
		if best == nil || count > best.MatchCount {
			best = &Match{Profile: p, MatchCount: count, PrimaryTriggerID: primary}
		}
	}

	return best
}
