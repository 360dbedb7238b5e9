package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// fakeDevice counts acquisitions and releases so tests can assert the
// device is never left held.
type fakeDevice struct {
	mu         sync.Mutex
	acquired   int
	released   int
	acquireErr error
	captureErr error
	sample     Sample
}

func (d *fakeDevice) Acquire(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.acquireErr != nil {
		return d.acquireErr
	}
	d.acquired++
	return nil
}

func (d *fakeDevice) Capture(ctx context.Context) (Sample, error) {
	if d.captureErr != nil {
		return Sample{}, d.captureErr
	}
	return d.sample, nil
}

func (d *fakeDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
}

func (d *fakeDevice) balanced() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquired == d.released
}

type ControllerSuite struct {
	suite.Suite
	ctrl *Controller
	ctx  context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctrl = NewController()
	s.ctx = context.Background()
}

func (s *ControllerSuite) TestStartCaptureSucceeds() {
	dev := &fakeDevice{sample: Sample{Data: []byte("frame"), ContentType: "image/jpeg"}}

	s.Require().NoError(s.ctrl.Start(s.ctx, dev))
	s.Equal(StateActive, s.ctrl.State())

	sample, err := s.ctrl.Capture(s.ctx)
	s.Require().NoError(err)
	s.Equal([]byte("frame"), sample.Data)

	s.Equal(StateIdle, s.ctrl.State())
	s.True(dev.balanced(), "device must be released after capture")
}

func (s *ControllerSuite) TestStartFailsWhenDeviceUnavailable() {
	dev := &fakeDevice{acquireErr: errors.New("camera busy")}

	err := s.ctrl.Start(s.ctx, dev)
	s.Require().Error(err)
	s.ErrorIs(err, ErrDeviceUnavailable)
	s.Equal(StateIdle, s.ctrl.State())
	s.True(dev.balanced())
}

func (s *ControllerSuite) TestSecondSessionFailsFast() {
	first := &fakeDevice{sample: Sample{Data: []byte("a")}}
	s.Require().NoError(s.ctrl.Start(s.ctx, first))

	second := &fakeDevice{sample: Sample{Data: []byte("b")}}
	err := s.ctrl.Start(s.ctx, second)
	s.Require().Error(err)
	s.ErrorIs(err, ErrSessionActive)

	// The first session is unaffected.
	_, err = s.ctrl.Capture(s.ctx)
	s.NoError(err)
	s.True(first.balanced())
}

func (s *ControllerSuite) TestCaptureFailureReleasesDevice() {
	dev := &fakeDevice{captureErr: errors.New("sensor fault")}
	s.Require().NoError(s.ctrl.Start(s.ctx, dev))

	_, err := s.ctrl.Capture(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, ErrCaptureFailed)
	s.Equal(StateIdle, s.ctrl.State())
	s.True(dev.balanced(), "device must be released on capture failure")
}

func (s *ControllerSuite) TestCancelAfterStartReleasesDevice() {
	dev := &fakeDevice{sample: Sample{Data: []byte("x")}}
	s.Require().NoError(s.ctrl.Start(s.ctx, dev))

	s.ctrl.Cancel()
	s.Equal(StateIdle, s.ctrl.State())
	s.True(dev.balanced(), "cancel must release the device before returning")

	// The controller accepts a fresh session after cancel.
	s.NoError(s.ctrl.Start(s.ctx, &fakeDevice{sample: Sample{Data: []byte("y")}}))
}

func (s *ControllerSuite) TestCancelFromIdleIsNoOp() {
	s.ctrl.Cancel()
	s.Equal(StateIdle, s.ctrl.State())
}

func (s *ControllerSuite) TestCaptureFromIdleIsInvalid() {
	_, err := s.ctrl.Capture(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *ControllerSuite) TestUploadDevice() {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s.Run("yields the uploaded sample once", func() {
		dev := NewUploadDevice([]byte("jpeg-bytes"), "image/jpeg", now)
		ctrl := NewController()
		s.Require().NoError(ctrl.Start(s.ctx, dev))
		sample, err := ctrl.Capture(s.ctx)
		s.Require().NoError(err)
		s.Equal("image/jpeg", sample.ContentType)
		s.Equal(now, sample.CapturedAt)
	})

	s.Run("empty upload fails capture", func() {
		dev := NewUploadDevice(nil, "image/jpeg", now)
		ctrl := NewController()
		s.Require().NoError(ctrl.Start(s.ctx, dev))
		_, err := ctrl.Capture(s.ctx)
		s.ErrorIs(err, ErrCaptureFailed)
		s.Equal(StateIdle, ctrl.State())
	})
}
