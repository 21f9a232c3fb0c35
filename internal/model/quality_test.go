package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuality(t *testing.T) {
	t.Parallel()

	for _, q := range Qualities() {
		got, err := ParseQuality(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, got)
		assert.NotEmpty(t, q.Title())
	}

	_, err := ParseQuality("divine")
	assert.ErrorIs(t, err, ErrUnknownQuality)
}

func TestQuality_Order(t *testing.T) {
	t.Parallel()

	qs := Qualities()
	require.Len(t, qs, QualityCount)
	assert.Equal(t, QualityMythic, qs[0])
	assert.Equal(t, QualityCommon, qs[QualityCount-1])
	assert.True(t, QualityLegendary > QualityEpic)
	assert.False(t, Quality(QualityCount).Valid())
	assert.Equal(t, "Quality(-1)", Quality(-1).String())
}

func TestQuality_JSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Pet{Rarity: QualityEpic})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rarity":"epic"`)

	var p Pet
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, QualityEpic, p.Rarity)

	assert.Error(t, json.Unmarshal([]byte(`{"rarity":"divine"}`), &p))
}
