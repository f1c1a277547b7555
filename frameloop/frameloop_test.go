package frameloop

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeSignal counts how many times the controller waited on it.
type fakeSignal struct {
	id    int
	waits int
	err   error
}

func (s *fakeSignal) Wait() error {
	s.waits++
	return s.err
}

// tick scripts the driver responses for one loop iteration.
type tick struct {
	slot       int
	suboptimal bool
	acquireErr error
	submitErr  error
	presentErr error
}

type submitRecord struct {
	slot  int
	after Signal
}

// fakePresenter plays back a scripted sequence of driver responses and
// records every call the controller makes. Each iteration which gets past
// the rebuild step consumes exactly one tick.
type fakePresenter struct {
	t      *testing.T
	images int
	script []tick
	cursor int

	submits  []submitRecord
	presents []int
	created  []*fakeSignal

	onSubmit func(slot int)
}

func (p *fakePresenter) ImageCount() int { return p.images }

func (p *fakePresenter) current() tick {
	require.Less(p.t, p.cursor, len(p.script), "presenter called beyond its script")
	return p.script[p.cursor]
}

func (p *fakePresenter) Acquire() (int, bool, error) {
	tk := p.current()
	if tk.acquireErr != nil {
		p.cursor++
		return 0, false, tk.acquireErr
	}
	return tk.slot, tk.suboptimal, nil
}

func (p *fakePresenter) Submit(slot int, after Signal) error {
	tk := p.current()
	p.submits = append(p.submits, submitRecord{slot: slot, after: after})
	if p.onSubmit != nil {
		p.onSubmit(slot)
	}
	if tk.submitErr != nil {
		p.cursor++
		return tk.submitErr
	}
	return nil
}

func (p *fakePresenter) Present(slot int) (Signal, error) {
	tk := p.current()
	p.cursor++
	p.presents = append(p.presents, slot)
	if tk.presentErr != nil {
		return nil, tk.presentErr
	}
	sig := &fakeSignal{id: len(p.created)}
	p.created = append(p.created, sig)
	return sig, nil
}

// fakeRebuilder reports a fixed image count until the test changes it.
type fakeRebuilder struct {
	count int
	err   error
	calls int
}

func (r *fakeRebuilder) Rebuild() (int, error) {
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return r.count, nil
}

func roundRobin(images, n int) []tick {
	script := make([]tick, n)
	for i := range script {
		script[i] = tick{slot: i % images}
	}
	return script
}

func TestSteadyStateChainsAndWaits(t *testing.T) {
	// Scenario: 3 swapchain images, no resize ever fires. Every slot's
	// signal must be waited on before its every-3rd reuse and each
	// submission must chain after the previous iteration's signal.
	p := &fakePresenter{t: t, images: 3, script: roundRobin(3, 9)}
	r := &fakeRebuilder{count: 3}
	c := New(p, r)

	for i := 0; i < 9; i++ {
		require.NoError(t, c.Iterate())
	}

	require.Zero(t, r.calls, "no rebuild expected without resize")
	require.Len(t, p.presents, 9)
	require.Len(t, p.created, 9)

	// Slots 0..2 were reused twice each; their first and second signals were
	// waited on exactly once. The last generation of signals never was.
	for i, sig := range p.created {
		if i < 6 {
			require.Equalf(t, 1, sig.waits, "signal %d", i)
		} else {
			require.Zerof(t, sig.waits, "signal %d", i)
		}
	}

	require.Nil(t, p.submits[0].after, "first submission has no predecessor")
	for i := 1; i < 9; i++ {
		require.Samef(t, p.created[i-1], p.submits[i].after,
			"submission %d must chain after the previous iteration's signal", i)
	}
}

func TestBackPressureBound(t *testing.T) {
	// At most one submission may be in flight per slot: whenever a slot is
	// resubmitted, its previous signal must already have been waited on.
	p := &fakePresenter{t: t, images: 2, script: roundRobin(2, 8)}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	last := map[int]*fakeSignal{}
	p.onSubmit = func(slot int) {
		if prior, ok := last[slot]; ok {
			require.Equalf(t, 1, prior.waits,
				"slot %d resubmitted before its previous signal resolved", slot)
		}
	}

	for i := 0; i < 8; i++ {
		require.NoError(t, c.Iterate())
		last[p.presents[len(p.presents)-1]] = p.created[len(p.created)-1]
	}
}

func TestResizeTriggersSingleRebuild(t *testing.T) {
	// Scenario: resize fires once with valid new dimensions. The next
	// iteration performs exactly one rebuild and subsequent iterations use
	// the new generation's image count.
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{slot: 0},
		{slot: 0},
		{slot: 1},
		{slot: 2},
	}}
	r := &fakeRebuilder{count: 3}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Len(t, c.signals, 2)

	c.RequestResize()
	require.NoError(t, c.Iterate())
	require.Equal(t, 1, r.calls)
	require.Len(t, c.signals, 3, "signal slots must match the new image count")
	require.False(t, c.resize)

	// The rebuild dropped the old generation's signals, so the first
	// submission afterwards has no predecessor.
	require.Nil(t, p.submits[1].after)

	require.NoError(t, c.Iterate())
	require.NoError(t, c.Iterate())
	require.Equal(t, 1, r.calls, "one resize, one rebuild")
}

func TestDegenerateExtentSkipsRebuild(t *testing.T) {
	// Scenario: resize fires while the window is minimized. The rebuild is
	// skipped every tick, the prior generation stays fully intact, and a
	// later valid extent finally rebuilds.
	script := make([]tick, 0, 4)
	for i := 0; i < 3; i++ {
		script = append(script, tick{acquireErr: ErrOutOfDate})
	}
	script = append(script, tick{slot: 0})

	p := &fakePresenter{t: t, images: 2, script: script}
	r := &fakeRebuilder{err: ErrDegenerateExtent}
	c := New(p, r)

	before := c.signals

	c.RequestResize()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Iterate())
		require.True(t, c.resize, "stale acquire must re-raise the flag")
	}

	require.Equal(t, 3, r.calls, "a skipped rebuild is retried every tick")
	require.Equal(t, before, c.signals, "previous generation must stay intact")
	require.Empty(t, p.submits, "nothing may be submitted on a stale swapchain")

	// Window restored: the extent is valid again.
	r.err = nil
	r.count = 2
	require.NoError(t, c.Iterate())
	require.Equal(t, 4, r.calls)
	require.False(t, c.resize)
	require.Len(t, p.presents, 1)
}

func TestOutOfDateAcquireAbortsIteration(t *testing.T) {
	// Scenario: acquisition returns out-of-date. The iteration is aborted
	// with zero submissions and the next iteration rebuilds.
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{acquireErr: ErrOutOfDate},
		{slot: 0},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Empty(t, p.submits)
	require.Empty(t, p.presents)
	require.True(t, c.resize)

	require.NoError(t, c.Iterate())
	require.Equal(t, 1, r.calls)
	require.Len(t, p.presents, 1)
}

func TestSuboptimalPresentsThenRebuilds(t *testing.T) {
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{slot: 0, suboptimal: true},
		{slot: 0},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Len(t, p.presents, 1, "a suboptimal frame is still presented")
	require.True(t, c.resize)

	require.NoError(t, c.Iterate())
	require.Equal(t, 1, r.calls)
}

func TestSubmitFailureDoesNotAdvancePrevious(t *testing.T) {
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{slot: 0},
		{slot: 1, submitErr: errors.New("submit refused")},
		{slot: 1},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.NoError(t, c.Iterate())

	require.Equal(t, 0, c.previous, "failed submission must not advance tracking")
	require.True(t, c.resize)

	// After the defensive rebuild the slots start clean.
	require.NoError(t, c.Iterate())
	require.Equal(t, 1, r.calls)
	require.Nil(t, p.submits[2].after)
}

func TestPresentOutOfDateStoresNoSignal(t *testing.T) {
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{slot: 1, presentErr: ErrOutOfDate},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Nil(t, c.signals[1], "slot must be treated as already resolved")
	require.True(t, c.resize)
	require.Equal(t, 1, c.previous)
}

func TestPresentUnexpectedErrorContinues(t *testing.T) {
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{slot: 0, presentErr: errors.New("queue hiccup")},
		{slot: 1},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Nil(t, c.signals[0])
	require.False(t, c.resize, "non-stale present failures do not force a rebuild")

	require.NoError(t, c.Iterate())
	require.Zero(t, r.calls)
}

func TestUnexpectedAcquireErrorDropsFrame(t *testing.T) {
	p := &fakePresenter{t: t, images: 2, script: []tick{
		{acquireErr: fmt.Errorf("acquire: %w", ErrDeviceLost)},
		{slot: 0},
	}}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	require.NoError(t, c.Iterate())
	require.Empty(t, p.submits)
	require.False(t, c.resize)

	require.NoError(t, c.Iterate())
	require.Zero(t, r.calls)
	require.Len(t, p.presents, 1)
}

func TestRebuildFailureIsFatal(t *testing.T) {
	p := &fakePresenter{t: t, images: 2}
	r := &fakeRebuilder{err: errors.New("no memory")}
	c := New(p, r)

	c.RequestResize()
	err := c.Iterate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "rebuilding swapchain")
}

func TestResizeConvergence(t *testing.T) {
	// Resize events interleaved with iterations: once events stop and the
	// extent is valid, the flag settles to false within one iteration.
	p := &fakePresenter{t: t, images: 2, script: roundRobin(2, 12)}
	r := &fakeRebuilder{count: 2}
	c := New(p, r)

	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			c.RequestResize()
		}
		require.NoError(t, c.Iterate())
	}

	require.NoError(t, c.Iterate())
	require.NoError(t, c.Iterate())
	require.False(t, c.resize)
	require.Equal(t, 5, r.calls)
}
