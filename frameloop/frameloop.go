// Package frameloop drives the per-frame presentation cycle: acquire a
// swapchain image, wait out the slot's previous use, submit the prerecorded
// work, present, and track the completion signal for the next reuse. It also
// owns the swapchain recreation state machine triggered by window resizes or
// a stale presentation result.
//
// The package knows nothing about Vulkan. The backend supplies a Presenter
// for the current swapchain generation and a Rebuilder which replaces it,
// which keeps the whole loop testable without a GPU.
package frameloop

import (
	"errors"
	"fmt"
	"log"
)

// ErrOutOfDate is returned by Presenter methods when the swapchain no longer
// matches the presentation surface and has to be rebuilt before further use.
var ErrOutOfDate = errors.New("swapchain is out of date")

// ErrDegenerateExtent is returned by Rebuilder.Rebuild when the surface
// currently reports unusable dimensions, e.g. a minimized window with a zero
// extent. The rebuild is skipped and the previous generation stays live.
var ErrDegenerateExtent = errors.New("surface extent is degenerate")

// ErrDeviceLost marks failures which most likely mean the device is gone for
// good. The loop still just drops the frame and carries on, the same as for
// any transient failure, but the condition is logged distinctly because a
// lost device usually does not come back.
var ErrDeviceLost = errors.New("device lost")

// Signal resolves once previously submitted GPU work has finished. A nil
// Signal is treated as already resolved.
type Signal interface {
	// Wait blocks until the associated work has completed.
	Wait() error
}

// Presenter is one swapchain generation: a fixed ring of presentable images
// with a prerecorded command buffer per image.
type Presenter interface {
	// ImageCount returns the number of presentable images in the current
	// generation.
	ImageCount() int

	// Acquire requests the next presentable image index with no timeout.
	// suboptimal means the image is usable but the swapchain no longer
	// matches the surface exactly. Returns ErrOutOfDate when the swapchain
	// cannot be used at all.
	Acquire() (slot int, suboptimal bool, err error)

	// Submit requests execution of the prerecorded command buffer for slot
	// on the graphics queue. Execution is ordered after the after signal
	// (nil means no predecessor) and after the slot's image-acquired signal,
	// which the Presenter tracks internally.
	Submit(slot int, after Signal) error

	// Present queues presentation of slot and returns the new completion
	// Signal for it. Returns ErrOutOfDate when presentation could not be
	// queued because the swapchain went stale.
	Present(slot int) (Signal, error)
}

// Rebuilder replaces the current swapchain generation with one sized to the
// surface's present dimensions, reusing cached shader modules and the
// already-uploaded mesh data.
type Rebuilder interface {
	// Rebuild returns the image count of the new generation, or
	// ErrDegenerateExtent when the surface cannot host a swapchain right now.
	Rebuild() (imageCount int, err error)
}

// Controller holds the loop's mutable state: the resize flag, the
// previous-slot index used for dependency chaining, and the live completion
// signal per frame slot. It is not safe for concurrent use; exactly one
// goroutine issues iterations, the GPU being the only other actor.
type Controller struct {
	presenter Presenter
	rebuilder Rebuilder

	// signals holds the live completion signal per frame slot, nil when the
	// slot has not been submitted since the last rebuild. Its length always
	// equals the current generation's image count.
	signals  []Signal
	previous int
	resize   bool
}

// New returns a Controller for the presenter's current generation. All frame
// slots start with no completion signal.
func New(p Presenter, r Rebuilder) *Controller {
	return &Controller{
		presenter: p,
		rebuilder: r,
		signals:   make([]Signal, p.ImageCount()),
	}
}

// RequestResize raises the resize flag. Call it from the window system's
// resized notification; the next iteration rebuilds the swapchain.
func (c *Controller) RequestResize() {
	c.resize = true
}

// Iterate runs a single frame. Any transient failure drops the frame and
// returns nil; the only non-nil error is a swapchain rebuild failing for a
// reason other than a degenerate extent, which there is no way to recover
// from inside the loop.
func (c *Controller) Iterate() error {
	if c.resize {
		// Clear before rebuilding: a resize arriving mid-rebuild raises the
		// flag again through the event callback.
		c.resize = false

		if err := c.rebuild(); err != nil {
			return err
		}
	}

	slot, suboptimal, err := c.presenter.Acquire()
	if err != nil {
		if errors.Is(err, ErrOutOfDate) {
			c.resize = true
			return nil
		}
		c.logDrop("acquire", err)
		return nil
	}
	if suboptimal {
		// Still worth presenting this frame; rebuild on the next one.
		c.resize = true
	}

	// Back-pressure: the slot's resources must not be reused while the GPU
	// may still be reading them. This bounds frames in flight to the number
	// of swapchain images.
	if prior := c.signals[slot]; prior != nil {
		if err := prior.Wait(); err != nil {
			c.logDrop("waiting on frame slot", err)
			return nil
		}
	}

	if err := c.presenter.Submit(slot, c.signals[c.previous]); err != nil {
		c.resize = true
		c.logDrop("submit", err)
		return nil
	}

	sig, err := c.presenter.Present(slot)
	switch {
	case err == nil:
		c.signals[slot] = sig
	case errors.Is(err, ErrOutOfDate):
		c.resize = true
		c.signals[slot] = nil
	default:
		c.logDrop("present", err)
		c.signals[slot] = nil
	}

	c.previous = slot
	return nil
}

// rebuild replaces the swapchain generation and resets every frame slot's
// completion signal. A degenerate surface extent skips the rebuild entirely,
// leaving the previous generation untouched.
func (c *Controller) rebuild() error {
	count, err := c.rebuilder.Rebuild()
	if err != nil {
		if errors.Is(err, ErrDegenerateExtent) {
			log.Printf("swapchain rebuild skipped: %s", err)
			return nil
		}
		return fmt.Errorf("rebuilding swapchain: %w", err)
	}

	c.signals = make([]Signal, count)
	c.previous = 0
	return nil
}

func (c *Controller) logDrop(op string, err error) {
	if errors.Is(err, ErrDeviceLost) {
		log.Printf("WARNING: %s failed with possible device loss, dropping frame: %s", op, err)
		return
	}
	log.Printf("%s failed, dropping frame: %s", op, err)
}
