//go:generate mockgen -source=gateway.go -destination=mocks/mocks.go -package=mocks Recognizer,EnrollmentDirectory

package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"facegate/internal/capture"
	"facegate/internal/verification"
	"facegate/internal/verification/mocks"
	"facegate/internal/verification/ratelimit"
	"facegate/internal/verification/recognizer"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/requestcontext"
	"facegate/pkg/testutil"
)

const (
	similarityThreshold = 0.975
	minAttemptInterval  = 3 * time.Second
)

// The HTTP client must satisfy the gateway's port without the client
// package importing this one.
var _ verification.Recognizer = (*recognizer.Client)(nil)

type GatewaySuite struct {
	suite.Suite

	ctrl           *gomock.Controller
	mockRecognizer *mocks.MockRecognizer
	mockEnrollment *mocks.MockEnrollmentDirectory
	limiter        *ratelimit.InMemoryStore
	gateway        *verification.Gateway
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.setup()
}

// SetupSubTest rebuilds the limiter and mocks for every s.Run so one
// subtest's reserved attempt slot cannot rate-limit the next.
func (s *GatewaySuite) SetupSubTest() {
	s.setup()
}

func (s *GatewaySuite) setup() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRecognizer = mocks.NewMockRecognizer(s.ctrl)
	s.mockEnrollment = mocks.NewMockEnrollmentDirectory(s.ctrl)
	s.limiter = ratelimit.NewInMemory()
	s.gateway = verification.NewGateway(verification.Config{
		SimilarityThreshold: similarityThreshold,
		MinAttemptInterval:  minAttemptInterval,
	}, s.mockRecognizer, s.mockEnrollment, s.limiter)
}

func (s *GatewaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GatewaySuite) ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func sample() capture.Sample {
	return capture.Sample{Data: []byte{0xFF, 0xD8}, ContentType: "image/jpeg"}
}

func singleFace(subjectID string, confidence float64) []verification.Face {
	return []verification.Face{{
		DetectionConfidence: 0.99,
		Candidates: []verification.Candidate{
			{SubjectID: subjectID, Confidence: confidence},
		},
	}}
}

func (s *GatewaySuite) TestVerifyMatch() {
	s.Run("accepts candidate at the threshold", func() {
		testutil.Given(s.T(), "an enrolled subject whose best candidate is exactly at the threshold")
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.975), nil)

		testutil.When(s.T(), "the subject is verified")
		result, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())

		testutil.Then(s.T(), "the match is accepted")
		s.Require().NoError(err)
		s.True(result.Matched)
		s.Equal("emp-7", result.SubjectID)
		s.InDelta(0.975, result.Confidence, 1e-9)
		s.Equal(verification.MethodFaceRecognition, result.Method)
	})

	s.Run("rejects candidate just below the threshold", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.974), nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())

		s.Require().Error(err)
		s.Equal(dErrors.CodeLowConfidence, dErrors.CodeOf(err))
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.InDelta(0.974, de.Confidence, 1e-9)
	})

	s.Run("picks the highest confidence candidate", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return([]verification.Face{{
				DetectionConfidence: 0.99,
				Candidates: []verification.Candidate{
					{SubjectID: "emp-9", Confidence: 0.41},
					{SubjectID: "emp-7", Confidence: 0.989},
				},
			}}, nil)

		result, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Require().NoError(err)
		s.True(result.Matched)
	})

	s.Run("confident match for a different subject is wrong person", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-9", 0.98), nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeWrongPerson, dErrors.CodeOf(err))
	})

	s.Run("unconfident match for a different subject is low confidence", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-9", 0.6), nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeLowConfidence, dErrors.CodeOf(err))
	})
}

func (s *GatewaySuite) TestVerifyFaceCount() {
	s.Run("no faces", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).Return(nil, nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeNoFaceDetected, dErrors.CodeOf(err))
	})

	s.Run("face with no candidates", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return([]verification.Face{{DetectionConfidence: 0.9}}, nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeNoFaceDetected, dErrors.CodeOf(err))
	})

	s.Run("multiple faces", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return([]verification.Face{
				{DetectionConfidence: 0.9},
				{DetectionConfidence: 0.8},
			}, nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeMultipleFaces, dErrors.CodeOf(err))
	})
}

func (s *GatewaySuite) TestVerifyRateLimit() {
	s.Run("second attempt within the interval is denied", func() {
		base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil).Times(2)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.99), nil)

		_, err := s.gateway.Verify(s.ctxAt(base), "emp-7", sample())
		s.Require().NoError(err)

		_, err = s.gateway.Verify(s.ctxAt(base.Add(time.Second)), "emp-7", sample())
		s.Require().Error(err)
		s.Equal(dErrors.CodeRateLimited, dErrors.CodeOf(err))
		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(2*time.Second, de.RetryAfter)
	})

	s.Run("different subjects do not contend", func() {
		base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.99), nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-8", 0.99), nil)

		_, err := s.gateway.Verify(s.ctxAt(base), "emp-7", sample())
		s.NoError(err)
		_, err = s.gateway.Verify(s.ctxAt(base.Add(time.Second)), "emp-8", sample())
		s.NoError(err)
	})

	s.Run("attempt after the interval passes", func() {
		base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil).Times(2)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.99), nil).Times(2)

		_, err := s.gateway.Verify(s.ctxAt(base), "emp-7", sample())
		s.NoError(err)
		_, err = s.gateway.Verify(s.ctxAt(base.Add(minAttemptInterval)), "emp-7", sample())
		s.NoError(err)
	})

	s.Run("attempt slots from a previous case do not carry over", func() {
		// Same subject and instant as the cases above; only a fresh
		// limiter lets this attempt through.
		base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(singleFace("emp-7", 0.99), nil)

		_, err := s.gateway.Verify(s.ctxAt(base), "emp-7", sample())
		s.NoError(err)
	})
}

func (s *GatewaySuite) TestVerifyEnrollment() {
	s.Run("unenrolled subject is rejected before any recognizer call", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(false, nil)

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeNotEnrolled, dErrors.CodeOf(err))
	})

	s.Run("directory failure is internal", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").
			Return(false, errors.New("directory down"))

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}

func (s *GatewaySuite) TestVerifyRecognizerErrors() {
	s.Run("retryable recognizer failure is transient", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(nil, recognizer.NewError(recognizer.ErrorOutage, "service down", nil))

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeTransient, dErrors.CodeOf(err))
	})

	s.Run("non-retryable recognizer failure is internal", func() {
		s.mockEnrollment.EXPECT().IsEnrolled(gomock.Any(), "emp-7").Return(true, nil)
		s.mockRecognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).
			Return(nil, recognizer.NewError(recognizer.ErrorAuthentication, "bad key", nil))

		_, err := s.gateway.Verify(s.ctxAt(time.Now()), "emp-7", sample())
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}
