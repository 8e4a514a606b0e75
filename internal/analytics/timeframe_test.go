package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var fixedNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func TestBuildBuckets_Week(t *testing.T) {
	buckets, err := BuildBuckets(fixedNow, TimeframeWeek)
	require.NoError(t, err)
	require.Len(t, buckets, 7)

	assert.Equal(t, "Thu", buckets[0].Label)
	assert.Equal(t, "Wed (Today)", buckets[6].Label)
	for i, b := range buckets {
		assert.Equal(t, i, b.Index)
		assert.True(t, b.Inclusive)
		assert.Equal(t, 0, b.Start.Hour())
		assert.Equal(t, 999*int(time.Millisecond), b.End.Nanosecond())
		if i > 0 {
			assert.True(t, b.Start.After(buckets[i-1].Start))
		}
		if i < 6 {
			assert.False(t, strings.Contains(b.Label, "Today"))
		}
	}
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2024, 3, 13, 23, 59, 59, 999_000_000, time.UTC), buckets[6].End)
}

func TestBuildBuckets_Month(t *testing.T) {
	buckets, err := BuildBuckets(fixedNow, TimeframeMonth)
	require.NoError(t, err)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"This Week", "Last Week", "2 Weeks Ago", "3 Weeks Ago", "4 Weeks Ago"}, labels)

	assert.True(t, buckets[0].Inclusive)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, time.Date(2024, 3, 13, 23, 59, 59, 999_000_000, time.UTC), buckets[0].End)

	assert.False(t, buckets[1].Inclusive)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), buckets[1].Start)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), buckets[1].End)

	// Half-open buckets tile without gaps.
	for i := 2; i < len(buckets); i++ {
		assert.Equal(t, buckets[i].End, buckets[i-1].Start)
	}
}

func TestBuildBuckets_Quarter(t *testing.T) {
	buckets, err := BuildBuckets(fixedNow, TimeframeQuarter)
	require.NoError(t, err)
	require.Len(t, buckets, 6)

	last := buckets[5]
	assert.Equal(t, "3/13", last.Label)
	assert.True(t, last.Inclusive)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), last.Start)

	assert.Equal(t, "2/28", buckets[4].Label)
	assert.Equal(t, last.Start, buckets[4].End)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i].Start.After(buckets[i-1].Start))
		assert.Equal(t, 14, int(buckets[i].Start.Sub(buckets[i-1].Start).Hours()/24))
	}
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	require.NoError(t, err)
	assert.Equal(t, TimeframeWeek, tf)

	tf, err = ParseTimeframe("3m")
	require.NoError(t, err)
	assert.Equal(t, "3 Months", tf.Label())

	_, err = ParseTimeframe("1y")
	assert.Error(t, err)

	_, err = BuildBuckets(fixedNow, "1y")
	assert.Error(t, err)
}
