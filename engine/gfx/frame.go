package gfx

import (
	"errors"
	"fmt"
	"time"

	"github.com/hubastard/grove-vk/engine/colors"
)

// DefaultFrameTimeout bounds fence waits and image acquisition.
const DefaultFrameTimeout = 50 * time.Millisecond

// FrameState is the phase of the single in-flight frame.
type FrameState uint8

const (
	StateIdle FrameState = iota
	StateAcquiring
	StateRecording
	StateSubmitted
	StatePresenting
	StateFailed
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateRecording:
		return "recording"
	case StateSubmitted:
		return "submitted"
	case StatePresenting:
		return "presenting"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("FrameState(%d)", uint8(s))
}

// FrameStats counts frame outcomes since creation.
type FrameStats struct {
	Presented   uint64
	Timeouts    uint64
	Recreations uint64
}

// FrameToken identifies one recording frame. It is only valid between the
// Begin that returned it and the matching Present.
type FrameToken struct {
	sync   *FrameSynchronizer
	gen    uint64
	image  uint32
	extent Extent
}

// Image is the acquired swapchain image index.
func (t FrameToken) Image() uint32 { return t.image }

func (t FrameToken) Extent() Extent { return t.extent }

func (t FrameToken) Generation() uint64 { return t.gen }

// Valid reports whether t still refers to the recording frame.
func (t FrameToken) Valid() bool {
	return t.sync != nil && t.sync.state == StateRecording && t.sync.gen == t.gen
}

// Recorder returns the command recorder of the frame t refers to.
func (t FrameToken) Recorder() (Recorder, error) {
	if t.sync == nil {
		return nil, ErrNoActiveFrame
	}
	if !t.Valid() {
		return nil, ErrStaleFrame
	}
	return t.sync.rec, nil
}

// FrameSynchronizer drives the acquire, record, submit and present
// protocol with a single frame in flight. It is not safe for concurrent use.
type FrameSynchronizer struct {
	dev     Device
	timeout time.Duration

	state FrameState
	err   error
	gen   uint64
	image uint32
	rec   Recorder
	// set when acquire reported a suboptimal swapchain
	stale bool

	stats FrameStats
}

func NewFrameSynchronizer(dev Device, timeout time.Duration) *FrameSynchronizer {
	if timeout <= 0 {
		timeout = DefaultFrameTimeout
	}
	return &FrameSynchronizer{dev: dev, timeout: timeout}
}

func (s *FrameSynchronizer) State() FrameState { return s.state }

func (s *FrameSynchronizer) Stats() FrameStats { return s.stats }

// Err returns the error that moved the synchronizer to StateFailed.
func (s *FrameSynchronizer) Err() error { return s.err }

func (s *FrameSynchronizer) fail(op string, err error) error {
	s.state = StateFailed
	s.rec = nil
	s.err = fmt.Errorf("frame %s: %w", op, err)
	return s.err
}

// Begin waits for the previous frame, acquires the next image and opens
// its render pass cleared to clearColor.
//
// Errors satisfying Retryable leave the synchronizer idle and the frame
// fence signaled. Any other device error is fatal and sticky.
func (s *FrameSynchronizer) Begin(clearColor colors.Color) (FrameToken, error) {
	switch s.state {
	case StateFailed:
		return FrameToken{}, s.err
	case StateIdle:
	default:
		return FrameToken{}, ErrFrameInProgress
	}
	s.state = StateAcquiring

	if err := s.dev.WaitFrameFence(s.timeout); err != nil {
		if errors.Is(err, ErrFrameTimeout) {
			s.stats.Timeouts++
			s.state = StateIdle
			return FrameToken{}, err
		}
		return FrameToken{}, s.fail("wait fence", err)
	}

	image, suboptimal, err := s.dev.AcquireImage(s.timeout)
	switch {
	case errors.Is(err, ErrFrameTimeout):
		s.stats.Timeouts++
		s.state = StateIdle
		return FrameToken{}, err
	case errors.Is(err, ErrSwapchainOutOfDate):
		if rerr := s.recreate(); rerr != nil {
			return FrameToken{}, rerr
		}
		s.state = StateIdle
		return FrameToken{}, err
	case err != nil:
		return FrameToken{}, s.fail("acquire", err)
	}
	if n := s.dev.ImageCount(); int(image) >= n {
		return FrameToken{}, s.fail("acquire", fmt.Errorf("image index %d out of range [0,%d)", image, n))
	}
	s.stale = suboptimal

	// Only reset once an image is ours; a timeout above must leave the
	// fence signaled or the next wait never returns.
	if err := s.dev.ResetFrameFence(); err != nil {
		return FrameToken{}, s.fail("reset fence", err)
	}
	rec, err := s.dev.BeginRecording(image, clearColor)
	if err != nil {
		return FrameToken{}, s.fail("begin recording", err)
	}

	s.gen++
	s.image = image
	s.rec = rec
	s.state = StateRecording
	return FrameToken{sync: s, gen: s.gen, image: image, extent: s.dev.Extent()}, nil
}

// Present closes the frame tok refers to, submits it and queues the image
// for presentation. An out-of-date or suboptimal swapchain is recreated
// and the frame still counts as presented.
func (s *FrameSynchronizer) Present(tok FrameToken) error {
	switch {
	case s.state == StateFailed:
		return s.err
	case s.state != StateRecording:
		return ErrNoActiveFrame
	case tok.sync != s || tok.gen != s.gen:
		return ErrStaleFrame
	}

	if err := s.dev.EndRecording(); err != nil {
		return s.fail("end recording", err)
	}
	s.rec = nil
	s.state = StateSubmitted
	if err := s.dev.Submit(); err != nil {
		return s.fail("submit", err)
	}

	s.state = StatePresenting
	suboptimal, err := s.dev.Present(s.image)
	if err != nil && !errors.Is(err, ErrSwapchainOutOfDate) {
		return s.fail("present", err)
	}
	if err != nil || suboptimal || s.stale {
		if rerr := s.recreate(); rerr != nil {
			return rerr
		}
	}
	s.stats.Presented++
	s.state = StateIdle
	return nil
}

func (s *FrameSynchronizer) recreate() error {
	if err := s.dev.RecreateSwapchain(); err != nil {
		return s.fail("recreate swapchain", err)
	}
	s.stale = false
	s.stats.Recreations++
	return nil
}
