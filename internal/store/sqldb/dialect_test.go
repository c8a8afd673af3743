package sqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`

	assert.Equal(t, q, Dialect{}.Rebind(q))
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, Dialect{Numbered: true}.Rebind(q))
}

func TestTimeValue_Scan(t *testing.T) {
	want := time.Date(2025, 4, 10, 20, 0, 0, 123000000, time.UTC)

	for _, src := range []any{
		want,
		want.In(time.FixedZone("BRT", -3*3600)),
		"2025-04-10T20:00:00.123Z",
		[]byte("2025-04-10T17:00:00.123-03:00"),
	} {
		var v timeValue
		require.NoError(t, v.Scan(src))
		assert.True(t, v.valid)
		assert.True(t, want.Equal(v.t), "src %v", src)
		assert.Equal(t, time.UTC, v.t.Location())
	}

	var null timeValue
	require.NoError(t, null.Scan(nil))
	assert.Nil(t, null.ptr())

	assert.Error(t, new(timeValue).Scan(42))
	assert.Error(t, new(timeValue).Scan("yesterday"))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 4, 10, 17, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "2025-04-10T20:00:00Z", FormatTime(ts))
}
