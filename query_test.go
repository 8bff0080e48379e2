package plistentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("ALL")
	require.NoError(t, err)
	assert.Equal(t, MatchAll(), q)
	assert.True(t, q.Matches("anything"))
	assert.True(t, q.Matches(""))
	assert.Equal(t, "ALL", q.String())

	q, err = ParseQuery("Name")
	require.NoError(t, err)
	assert.Equal(t, MatchKey("Name"), q)
	assert.True(t, q.Matches("Name"))
	assert.False(t, q.Matches("name"))
	assert.False(t, q.Matches("Names"))

	_, err = ParseQuery("")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	// "all" is an ordinary key
	q, err = ParseQuery("all")
	require.NoError(t, err)
	assert.False(t, q.Matches("other"))
}

func TestMatchKeyALL(t *testing.T) {
	q := MatchKey("ALL")
	assert.True(t, q.Matches("ALL"))
	assert.False(t, q.Matches("Name"))
}
