package compatibility

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFromMap(t *testing.T) {
	full := map[string]int{
		"playful": 7, "calm": 3, "energetic": 9,
		"friendly": 8, "independent": 2, "social": 6,
	}

	t.Run("Complete map", func(t *testing.T) {
		p, err := ProfileFromMap(full)
		require.NoError(t, err)
		assert.Equal(t, Profile{Playful: 7, Calm: 3, Energetic: 9, Friendly: 8, Independent: 2, Social: 6}, p)
		assert.Equal(t, full, p.Map())
	})

	t.Run("Missing key", func(t *testing.T) {
		m := map[string]int{}
		for k, v := range full {
			if k != "social" {
				m[k] = v
			}
		}
		_, err := ProfileFromMap(m)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, TraitSocial, verr.Fields[0].Trait)
		assert.Equal(t, ReasonMissing, verr.Fields[0].Reason)
	})

	t.Run("Unknown key", func(t *testing.T) {
		m := map[string]int{"grumpy": 4}
		for k, v := range full {
			m[k] = v
		}
		_, err := ProfileFromMap(m)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, ReasonUnknown, verr.Fields[0].Reason)
		assert.Equal(t, "grumpy", verr.Fields[0].Trait)
	})

	t.Run("Out of range", func(t *testing.T) {
		m := map[string]int{}
		for k, v := range full {
			m[k] = v
		}
		m["energetic"] = 11
		_, err := ProfileFromMap(m)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, FieldError{Trait: TraitEnergetic, Value: 11, Reason: ReasonOutOfRange}, verr.Fields[0])
	})
}

func TestProfileJSON(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"playful":5,"calm":5,"energetic":5,"friendly":5,"independent":5}`), &p))

	err := Validate(p)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "social", verr.Fields[0].Trait)
	assert.Equal(t, "invalid personality profile: social is missing", err.Error())
}

func TestTraitsOrder(t *testing.T) {
	got := Traits()
	assert.Equal(t, []string{"playful", "calm", "energetic", "friendly", "independent", "social"}, got)

	got[0] = "changed"
	assert.Equal(t, TraitPlayful, Traits()[0])

	_, ok := Profile{}.Value("grumpy")
	assert.False(t, ok)
}

func TestIsIncomplete(t *testing.T) {
	partial := Profile{Playful: 4, Calm: 4, Energetic: 4, Friendly: 4, Independent: 4}
	outOfRange := Profile{Playful: 4, Calm: 4, Energetic: 4, Friendly: 4, Independent: 4, Social: 12}
	both := Profile{Playful: 11}

	assert.True(t, IsIncomplete(Profile{}))
	assert.True(t, IsIncomplete(partial))
	assert.False(t, IsIncomplete(outOfRange))
	assert.False(t, IsIncomplete(both))
	assert.False(t, IsIncomplete(Profile{Playful: 1, Calm: 1, Energetic: 1, Friendly: 1, Independent: 1, Social: 1}))
}
