package capture

import (
	"context"
	"errors"
	"time"
)

// UploadDevice adapts a sample submitted by a remote capture station (webcam
// frame uploaded with the request) to the Device contract. Acquisition always
// succeeds; exclusivity is still enforced by the Controller so a process
// serves one verification attempt at a time.
type UploadDevice struct {
	sample   Sample
	consumed bool
}

// NewUploadDevice wraps uploaded image bytes as a one-shot capture device.
func NewUploadDevice(data []byte, contentType string, capturedAt time.Time) *UploadDevice {
	return &UploadDevice{
		sample: Sample{
			Data:        data,
			ContentType: contentType,
			CapturedAt:  capturedAt,
		},
	}
}

func (d *UploadDevice) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (d *UploadDevice) Capture(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	if d.consumed {
		return Sample{}, errors.New("sample already consumed")
	}
	if len(d.sample.Data) == 0 {
		return Sample{}, errors.New("empty sample")
	}
	d.consumed = true
	return d.sample, nil
}

func (d *UploadDevice) Release() {}
