package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultGetSetDelete(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))

	_, err := v.Get(KeyIMAPPassword)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, v.Set(KeyIMAPPassword, "hunter2"))
	got, err := v.Get(KeyIMAPPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, v.Delete(KeyIMAPPassword))
	require.NoError(t, v.Delete(KeyIMAPPassword))
	_, err = v.Get(KeyIMAPPassword)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPasscode(t *testing.T) {
	v := NewVault(keyring.NewArrayKeyring(nil))

	ok, err := v.HasPasscode()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, v.SetPasscode("1234"))
	ok, err = v.HasPasscode()
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := v.Get(KeyPasscode)
	require.NoError(t, err)
	assert.NotEqual(t, "1234", stored)

	assert.NoError(t, v.CheckPasscode("1234"))
	assert.ErrorIs(t, v.CheckPasscode("4321"), ErrWrongPasscode)
	assert.Error(t, v.SetPasscode(""))
}
