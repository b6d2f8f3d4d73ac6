package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeWindowOverlaps(t *testing.T) {
	w := TimeWindow{Start: at(14, 0), End: at(16, 0)}
	cases := []struct {
		name  string
		other TimeWindow
		want  bool
	}{
		{"touching before", TimeWindow{at(12, 0), at(14, 0)}, false},
		{"touching after", TimeWindow{at(16, 0), at(18, 0)}, false},
		{"inside", TimeWindow{at(14, 30), at(15, 0)}, true},
		{"covering", TimeWindow{at(13, 0), at(17, 0)}, true},
		{"straddling start", TimeWindow{at(13, 30), at(14, 1)}, true},
		{"identical", w, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(w))
		})
	}
}

func TestTimeWindowMinutes(t *testing.T) {
	w := TimeWindow{Start: at(14, 0), End: at(16, 30)}
	assert.Equal(t, 150, w.Minutes())
	assert.True(t, w.Valid())
	assert.False(t, TimeWindow{Start: at(14, 0), End: at(14, 0)}.Valid())
	assert.False(t, TimeWindow{Start: at(14, 0), End: at(14, 0).Add(-time.Minute)}.Valid())
}
