package hotkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModifierNames(t *testing.T) {
	require.Equal(t, "SUPER", modifierNames(ModSuper))
	require.Equal(t, "CTRL SHIFT", modifierNames(ModCtrl|ModShift))
	require.Equal(t, "SUPER CTRL ALT SHIFT", modifierNames(ModSuper|ModCtrl|ModAlt|ModShift))
	require.Equal(t, "", modifierNames(0))
}

func TestKeyName(t *testing.T) {
	name, ok := keyName(30)
	require.True(t, ok)
	require.Equal(t, "A", name)

	name, ok = keyName(88)
	require.True(t, ok)
	require.Equal(t, "F12", name)

	_, ok = keyName(9999)
	require.False(t, ok)
}
