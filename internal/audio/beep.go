package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

var format = beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}

// track is one channel's stream. It never reports end-of-stream to the
// mixer: loops rewind their source, one-shots pad with silence once done.
type track struct {
	src  beep.StreamSeeker
	loop bool
	done bool
}

func (t *track) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if t.done {
			for i := filled; i < len(samples); i++ {
				samples[i] = [2]float64{}
			}
			return len(samples), true
		}
		n, ok := t.src.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if !t.loop || t.src.Len() == 0 {
			t.done = true
			continue
		}
		if err := t.src.Seek(0); err != nil {
			t.done = true
		}
	}
	return len(samples), true
}

func (t *track) Err() error { return t.src.Err() }

func (t *track) rewind() {
	_ = t.src.Seek(0)
	t.done = false
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// BeepBackend plays synthesised channels through the system speaker. All
// channels sit in one mixer, paused, and are toggled through beep.Ctrl.
type BeepBackend struct {
	lock   sync.Locker
	mixer  *beep.Mixer
	tracks map[Channel]*track
	ctrls  map[Channel]*beep.Ctrl
}

// NewBeepBackend initialises the speaker. It fails when no audio device is
// usable; callers fall back to NullBackend.
func NewBeepBackend() (*BeepBackend, error) {
	b, err := newBeepBackend(speakerLock{})
	if err != nil {
		return nil, err
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(b.mixer)
	return b, nil
}

func newBeepBackend(lock sync.Locker) (*BeepBackend, error) {
	b := &BeepBackend{
		lock:   lock,
		mixer:  &beep.Mixer{},
		tracks: map[Channel]*track{},
		ctrls:  map[Channel]*beep.Ctrl{},
	}
	for ch, notes := range themes {
		src, err := render(notes)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", ch, err)
		}
		t := &track{src: src, loop: ch.Loops()}
		ctrl := &beep.Ctrl{Streamer: t, Paused: true}
		b.tracks[ch] = t
		b.ctrls[ch] = ctrl
		b.mixer.Add(ctrl)
	}
	return b, nil
}

func (b *BeepBackend) Start(ch Channel) error {
	ctrl, ok := b.ctrls[ch]
	if !ok {
		return fmt.Errorf("no track for channel %s", ch)
	}
	b.lock.Lock()
	ctrl.Paused = false
	b.lock.Unlock()
	return nil
}

func (b *BeepBackend) Pause(ch Channel) {
	ctrl, ok := b.ctrls[ch]
	if !ok {
		return
	}
	b.lock.Lock()
	ctrl.Paused = true
	b.lock.Unlock()
}

func (b *BeepBackend) Stop(ch Channel) {
	ctrl, ok := b.ctrls[ch]
	if !ok {
		return
	}
	b.lock.Lock()
	ctrl.Paused = true
	b.tracks[ch].rewind()
	b.lock.Unlock()
}

// Close silences everything and releases the speaker.
func (b *BeepBackend) Close() error {
	b.lock.Lock()
	for _, ctrl := range b.ctrls {
		ctrl.Paused = true
	}
	b.mixer.Clear()
	b.lock.Unlock()
	speaker.Close()
	return nil
}

// NullBackend accepts every call and plays nothing. Used when audio is
// disabled or no device is available.
type NullBackend struct{}

func (NullBackend) Start(Channel) error { return nil }
func (NullBackend) Pause(Channel)       {}
func (NullBackend) Stop(Channel)        {}

type note struct {
	freq float64 // 0 is a rest
	dur  time.Duration
}

var themes = map[Channel][]note{
	ChannelMenuLoop: {
		{220, 400 * time.Millisecond}, {261.63, 400 * time.Millisecond},
		{329.63, 400 * time.Millisecond}, {261.63, 400 * time.Millisecond},
	},
	ChannelGameplayLoop: {
		{110, 250 * time.Millisecond}, {0, 50 * time.Millisecond},
		{164.81, 250 * time.Millisecond}, {0, 50 * time.Millisecond},
	},
	ChannelVictoryOneShot: {
		{523.25, 150 * time.Millisecond}, {659.25, 150 * time.Millisecond},
		{783.99, 150 * time.Millisecond}, {1046.5, 400 * time.Millisecond},
	},
	ChannelLoseOneShot: {
		{392, 200 * time.Millisecond}, {329.63, 200 * time.Millisecond},
		{261.63, 200 * time.Millisecond}, {196, 500 * time.Millisecond},
	},
}

// render synthesises notes into a seekable in-memory buffer.
func render(notes []note) (beep.StreamSeeker, error) {
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sampleRate.N(n.dur)
		if n.freq == 0 {
			parts = append(parts, beep.Silence(samples))
			continue
		}
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &effects.Volume{Streamer: beep.Take(samples, tone), Base: 2, Volume: -3})
	}
	buf := beep.NewBuffer(format)
	buf.Append(beep.Seq(parts...))
	return buf.Streamer(0, buf.Len()), nil
}
