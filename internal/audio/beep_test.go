package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampStreamer yields 1, 2, ... n on the left channel.
type rampStreamer struct {
	n, pos int
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	if r.pos >= r.n {
		return 0, false
	}
	i := 0
	for ; i < len(samples) && r.pos < r.n; i++ {
		r.pos++
		samples[i] = [2]float64{float64(r.pos), 0}
	}
	return i, true
}

func (r *rampStreamer) Err() error    { return nil }
func (r *rampStreamer) Len() int      { return r.n }
func (r *rampStreamer) Position() int { return r.pos }
func (r *rampStreamer) Seek(p int) error {
	r.pos = p
	return nil
}

func left(samples [][2]float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s[0]
	}
	return out
}

func TestTrack_LoopWrapsAround(t *testing.T) {
	tr := &track{src: &rampStreamer{n: 3}, loop: true}
	buf := make([][2]float64, 7)

	n, ok := tr.Stream(buf)
	assert.Equal(t, 7, n)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3, 1}, left(buf))
}

func TestTrack_OneShotPadsWithSilence(t *testing.T) {
	tr := &track{src: &rampStreamer{n: 3}}
	buf := make([][2]float64, 5)

	n, ok := tr.Stream(buf)
	assert.Equal(t, 5, n)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, left(buf))

	tr.Stream(buf)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, left(buf))

	tr.rewind()
	tr.Stream(buf)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, left(buf))
}

func TestBeepBackend_ControlsTracks(t *testing.T) {
	b, err := newBeepBackend(&sync.Mutex{})
	require.NoError(t, err)

	for _, ch := range []Channel{ChannelMenuLoop, ChannelGameplayLoop, ChannelVictoryOneShot, ChannelLoseOneShot} {
		require.Contains(t, b.ctrls, ch)
		assert.True(t, b.ctrls[ch].Paused, "%s starts paused", ch)
	}

	require.NoError(t, b.Start(ChannelMenuLoop))
	assert.False(t, b.ctrls[ChannelMenuLoop].Paused)

	buf := make([][2]float64, 512)
	b.tracks[ChannelMenuLoop].Stream(buf)
	assert.Positive(t, b.tracks[ChannelMenuLoop].src.Position())

	b.Pause(ChannelMenuLoop)
	assert.True(t, b.ctrls[ChannelMenuLoop].Paused)
	assert.Positive(t, b.tracks[ChannelMenuLoop].src.Position())

	b.Stop(ChannelMenuLoop)
	assert.Zero(t, b.tracks[ChannelMenuLoop].src.Position())

	assert.Error(t, b.Start(ChannelNone))
}
