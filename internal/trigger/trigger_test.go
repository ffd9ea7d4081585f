package trigger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Zakay/AudioProfiles/internal/notify"
	"github.com/Zakay/AudioProfiles/internal/profile"
)

func idSet(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func profileWithTriggers(name string, triggers ...string) profile.Profile {
	p := profile.New(name)
	p.TriggerDeviceIDs = triggers
	return p
}

func TestBestMatchLargestIntersectionWins(t *testing.T) {
	narrow := profileWithTriggers("Narrow", "a")
	wide := profileWithTriggers("Wide", "a", "b")

	match := BestMatch([]profile.Profile{narrow, wide}, idSet("a", "b"))
	require.NotNil(t, match)
	require.Equal(t, "Wide", match.Profile.Name)
	require.Equal(t, 2, match.MatchCount)
}

func TestBestMatchTieKeepsEarlierProfile(t *testing.T) {
	first := profileWithTriggers("First", "a")
	second := profileWithTriggers("Second", "a")

	match := BestMatch([]profile.Profile{first, second}, idSet("a"))
	require.NotNil(t, match)
	require.Equal(t, "First", match.Profile.Name)

	// Deterministic across repeated evaluations.
	for i := 0; i < 10; i++ {
		again := BestMatch([]profile.Profile{first, second}, idSet("a"))
		require.Equal(t, "First", again.Profile.Name)
	}
}

func TestBestMatchSkipsEmptyTriggerLists(t *testing.T) {
	def := profile.NewSystemDefault()
	match := BestMatch([]profile.Profile{def}, idSet("a"))
	require.Nil(t, match)
}

func TestBestMatchNoIntersection(t *testing.T) {
	p := profileWithTriggers("Work", "dock")
	require.Nil(t, BestMatch([]profile.Profile{p}, idSet("other")))
	require.Nil(t, BestMatch([]profile.Profile{p}, idSet()))
}

func TestBestMatchPrimaryTriggerFollowsListOrder(t *testing.T) {
	p := profileWithTriggers("Work", "dock", "monitor-mic")

	// Only the second list entry is present.
	match := BestMatch([]profile.Profile{p}, idSet("monitor-mic"))
	require.Equal(t, "monitor-mic", match.PrimaryTriggerID)

	// Both present: list order decides, not discovery order.
	match = BestMatch([]profile.Profile{p}, idSet("monitor-mic", "dock"))
	require.Equal(t, "dock", match.PrimaryTriggerID)
}

type fakePresence struct {
	activeAfter bool
}

func (f fakePresence) ActiveSeenAfter([]string, time.Time) bool { return f.activeAfter }

func TestOverridePolicyAllowsWhenNoManualSwitch(t *testing.T) {
	o := NewOverridePolicy(fakePresence{activeAfter: false})
	require.True(t, o.ShouldApply([]string{"dock"}))
}

func TestOverridePolicySuppressesStaleTriggers(t *testing.T) {
	o := NewOverridePolicy(fakePresence{activeAfter: false})
	o.RecordManual()
	require.False(t, o.ShouldApply([]string{"dock"}))
}

func TestOverridePolicyReleasesOnFreshConnection(t *testing.T) {
	o := NewOverridePolicy(fakePresence{activeAfter: true})
	o.RecordManual()
	require.True(t, o.ShouldApply([]string{"dock"}))
}

func TestOverridePolicyClear(t *testing.T) {
	o := NewOverridePolicy(fakePresence{activeAfter: false})
	o.RecordManual()
	_, have := o.LastManual()
	require.True(t, have)

	o.Clear()
	_, have = o.LastManual()
	require.False(t, have)
	require.True(t, o.ShouldApply([]string{"dock"}))
}

func TestDecideNoOpWhenMatchedProfileAlreadyActiveAutomatically(t *testing.T) {
	work := profileWithTriggers("Work", "dock")
	match := &Match{Profile: work, MatchCount: 1, PrimaryTriggerID: "dock"}

	decision, err := Decide(match, work.ID, false, []profile.Profile{work})
	require.NoError(t, err)
	require.Nil(t, decision)
}

func TestDecideManualReappliesActiveProfile(t *testing.T) {
	work := profileWithTriggers("Work", "dock")
	match := &Match{Profile: work, MatchCount: 1, PrimaryTriggerID: "dock"}

	decision, err := Decide(match, work.ID, true, []profile.Profile{work})
	require.NoError(t, err)
	require.NotNil(t, decision)
	require.Equal(t, work.ID, decision.Profile.ID)
	require.False(t, decision.Notify)
	require.Equal(t, notify.KindManualSwitch, decision.Kind)
}

func TestDecideNewAutomaticActivationNotifies(t *testing.T) {
	work := profileWithTriggers("Work", "dock")
	match := &Match{Profile: work, MatchCount: 1, PrimaryTriggerID: "dock"}

	decision, err := Decide(match, uuid.Nil, false, []profile.Profile{work})
	require.NoError(t, err)
	require.NotNil(t, decision)
	require.True(t, decision.Notify)
	require.Equal(t, notify.KindTriggeredSwitch, decision.Kind)
}

func TestDecideFallsBackToSystemDefault(t *testing.T) {
	def := profile.NewSystemDefault()
	work := profileWithTriggers("Work", "dock")

	decision, err := Decide(nil, work.ID, false, []profile.Profile{def, work})
	require.NoError(t, err)
	require.NotNil(t, decision)
	require.Equal(t, def.ID, decision.Profile.ID)
	require.True(t, decision.Notify)
	require.Equal(t, notify.KindFallbackSwitch, decision.Kind)
}

func TestDecideFallbackNoOpWhenDefaultActive(t *testing.T) {
	def := profile.NewSystemDefault()

	decision, err := Decide(nil, def.ID, false, []profile.Profile{def})
	require.NoError(t, err)
	require.Nil(t, decision)
}

func TestDecideMissingSystemDefaultIsNonFatalError(t *testing.T) {
	work := profileWithTriggers("Work", "dock")

	decision, err := Decide(nil, uuid.Nil, false, []profile.Profile{work})
	require.ErrorIs(t, err, ErrNoSystemDefault)
	require.Nil(t, decision)
}
