package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Playback renders mono PCM16 audio to the default output device. Writers
// append decoded vendor audio; oto pulls it through the io.Reader side on
// its own schedule. Flush discards everything pending, which is how an
// interrupted response goes quiet immediately.
type Playback struct {
	otoCtx *oto.Context
	logger *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	player  *oto.Player
	playing bool
	closed  bool
}

// NewPlayback initializes the output device at the given sample rate.
func NewPlayback(sampleRate int, logger *zap.Logger) (*Playback, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		// ~100ms buffer keeps latency low without starving the device.
		BufferSize: 100 * time.Millisecond,
	}
	otoCtx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("init playback device: %w", err)
	}
	<-ready

	p := &Playback{otoCtx: otoCtx, logger: logger}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Write queues PCM16 bytes for playback, starting the player on first use.
func (p *Playback) Write(pcm []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.buf = append(p.buf, pcm...)
	if !p.playing {
		p.playing = true
		p.player = p.otoCtx.NewPlayer(p)
		p.player.Play()
	}
	p.cond.Signal()
}

// Read implements io.Reader for the oto player. It blocks until audio is
// available, and returns silence while draining after Close.
func (p *Playback) Read(out []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.buf) == 0 && !p.closed {
		p.cond.Wait()
	}

	if p.closed && len(p.buf) == 0 {
		for i := range out {
			out[i] = 0
		}
		return len(out), nil
	}

	n := copy(out, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

// Flush discards all queued audio and stops the current player so the next
// Write starts from silence.
func (p *Playback) Flush() {
	p.mu.Lock()
	p.buf = p.buf[:0]
	player := p.player
	wasPlaying := p.playing
	p.player = nil
	p.playing = false
	p.mu.Unlock()

	if player != nil && wasPlaying {
		player.Pause()
		_ = player.Close()
	}
}

// Close stops playback and releases the player. Queued audio is discarded.
func (p *Playback) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	player := p.player
	p.player = nil
	p.mu.Unlock()

	if player != nil {
		_ = player.Close()
	}
}
