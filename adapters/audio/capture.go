// Package audio provides the local device boundary: a microphone capture
// source and a speaker playback sink for mono PCM16 audio. The hardware
// callbacks run on miniaudio's own threads and must never block, so capture
// hands frames off through a bounded queue and playback buffers under a
// condition variable.
package audio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/shopeat/server/internal/audio"
)

// Capture acquires microphone audio and pushes fixed-size PCM16 frames into
// a FrameQueue. The device callback only copies bytes and enqueues; the
// queue's drop-oldest policy keeps the callback bounded even when the
// network consumer stalls.
type Capture struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	queue  *audio.FrameQueue
	logger *zap.Logger

	frameBytes int

	mu      sync.Mutex
	pending []byte
	started bool
}

// NewCapture initializes the default capture device at the given sample rate
// (mono, 16-bit signed). Frames of frameBytes are delivered to queue.
func NewCapture(sampleRate, frameBytes int, queue *audio.FrameQueue, logger *zap.Logger) (*Capture, error) {
	ctxConfig := malgo.ContextConfig{}
	ctxConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, ctxConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	c := &Capture{
		ctx:        malgoCtx,
		queue:      queue,
		logger:     logger,
		frameBytes: frameBytes,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			c.onSamples(input)
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		malgoCtx.Uninit()
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	c.device = device

	return c, nil
}

// Start begins capturing.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("start capture device: %w", err)
	}
	c.started = true
	c.logger.Info("Microphone capture started", zap.Int("frameBytes", c.frameBytes))
	return nil
}

// onSamples runs on the hardware callback thread. It slices the incoming
// buffer into fixed-size frames; the tail carries over to the next callback.
func (c *Capture) onSamples(input []byte) {
	c.mu.Lock()
	c.pending = append(c.pending, input...)
	for len(c.pending) >= c.frameBytes {
		frame := make([]byte, c.frameBytes)
		copy(frame, c.pending[:c.frameBytes])
		c.pending = c.pending[c.frameBytes:]
		c.queue.Enqueue(frame)
	}
	c.mu.Unlock()
}

// Close stops the device and releases the audio context. The frame queue is
// left to its owner.
func (c *Capture) Close() {
	c.mu.Lock()
	started := c.started
	c.started = false
	c.mu.Unlock()

	if c.device != nil {
		if started {
			_ = c.device.Stop()
		}
		c.device.Uninit()
	}
	if c.ctx != nil {
		_ = c.ctx.Uninit()
	}
}
