package trigger

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/notify"
	"github.com/Zakay/AudioProfiles/internal/profile"
)

// ErrNoSystemDefault signals a configuration-invariant violation: the
// profile store guarantees a System Default exists, so hitting this is a
// defensive warning path, never expected in normal operation.
var ErrNoSystemDefault = errors.New("no System Default profile available for fallback")

// Decision is the activation command the arbiter emits.
type Decision struct {
	Profile profile.Profile
	Notify  bool
	Kind    notify.Kind
}

// Decide arbitrates one evaluation outcome.
//
// With a match: re-applying the already-active profile automatically is
// a no-op (re-evaluation must not thrash); otherwise the match activates,
// announcing only new automatic activations. Without a match: fall back
// to System Default unless it is already active.
//
// activeID is uuid.Nil when no profile is active yet.
func Decide(match *Match, activeID uuid.UUID, manual bool, profiles []profile.Profile) (*Decision, error) {
	if match != nil {
		if match.Profile.ID == activeID && !manual {
			return nil, nil
		}
		isNewAutomatic := !manual && match.Profile.ID != activeID
		kind := notify.KindTriggeredSwitch
		if manual {
			kind = notify.KindManualSwitch
		}
		return &Decision{
			Profile: match.Profile,
			Notify:  isNewAutomatic,
			Kind:    kind,
		}, nil
	}

	var systemDefault *profile.Profile
	for i := range profiles {
		if profiles[i].IsSystemDefault() {
			systemDefault = &profiles[i]
			break
		}
	}
	if systemDefault == nil {
		return nil, ErrNoSystemDefault
	}
	if systemDefault.ID == activeID {
		return nil, nil
	}
	return &Decision{
		Profile: *systemDefault,
		Notify:  true,
		Kind:    notify.KindFallbackSwitch,
	}, nil
}
