package enrollment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facegate/internal/capture"
	"facegate/internal/verification/recognizer"
	dErrors "facegate/pkg/domain-errors"
	audit "facegate/pkg/platform/audit"
	"facegate/pkg/platform/audit/publisher"
	"facegate/pkg/platform/audit/store/memory"
	"facegate/pkg/requestcontext"
)

type fakeEnroller struct {
	err   error
	calls int
}

func (e *fakeEnroller) Enroll(_ context.Context, subjectID string, _ capture.Sample) (recognizer.Enrollment, error) {
	e.calls++
	if e.err != nil {
		return recognizer.Enrollment{}, e.err
	}
	return recognizer.Enrollment{FaceID: "face-1", SubjectID: subjectID}, nil
}

type EnrollmentSuite struct {
	suite.Suite

	store    *InMemoryStore
	enroller *fakeEnroller
	audits   *memory.InMemoryStore
	service  *Service
}

func TestEnrollmentSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentSuite))
}

func (s *EnrollmentSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.enroller = &fakeEnroller{}
	s.audits = memory.NewInMemoryStore()
	s.service = NewService(s.store, s.enroller, publisher.NewPublisher(s.audits))
}

func sample() capture.Sample {
	return capture.Sample{Data: []byte{0xFF, 0xD8}, ContentType: "image/jpeg"}
}

func (s *EnrollmentSuite) TestEnroll() {
	at := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	s.Run("registers and records", func() {
		record, err := s.service.Enroll(ctx, "emp-7", sample())
		s.Require().NoError(err)
		s.Equal("emp-7", record.SubjectID)
		s.Equal("face-1", record.FaceID)
		s.True(record.EnrolledAt.Equal(at))

		enrolled, err := s.service.IsEnrolled(ctx, "emp-7")
		s.Require().NoError(err)
		s.True(enrolled)

		events, err := s.audits.ListBySubject(ctx, "emp-7")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventFaceEnrolled), events[0].Action)
		s.Equal(audit.CategoryCompliance, events[0].Category)
	})

	s.Run("empty sample is rejected before the recognizer", func() {
		before := s.enroller.calls
		_, err := s.service.Enroll(ctx, "emp-8", capture.Sample{})
		s.Equal(dErrors.CodeInvalidInput, dErrors.CodeOf(err))
		s.Equal(before, s.enroller.calls)
	})

	s.Run("recognizer outage is transient", func() {
		s.enroller.err = recognizer.NewError(recognizer.ErrorOutage, "down", nil)
		_, err := s.service.Enroll(ctx, "emp-8", sample())
		s.Equal(dErrors.CodeTransient, dErrors.CodeOf(err))
	})

	s.Run("recognizer rejection is internal", func() {
		s.enroller.err = recognizer.NewError(recognizer.ErrorBadData, "bad image", nil)
		_, err := s.service.Enroll(ctx, "emp-8", sample())
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}

func (s *EnrollmentSuite) TestIsEnrolled() {
	ctx := context.Background()

	enrolled, err := s.service.IsEnrolled(ctx, "emp-9")
	s.Require().NoError(err)
	s.False(enrolled)

	_, err = s.service.Enroll(ctx, "emp-9", sample())
	s.Require().NoError(err)

	enrolled, err = s.service.IsEnrolled(ctx, "emp-9")
	s.Require().NoError(err)
	s.True(enrolled)
}
