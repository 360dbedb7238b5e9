package station_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facegate/internal/station"
	dErrors "facegate/pkg/domain-errors"
	"facegate/pkg/platform/secrets"
)

type issuedToken struct {
	subjectID string
	stationID string
	expiresIn time.Duration
}

type fakeIssuer struct {
	issued []issuedToken
}

func (f *fakeIssuer) GenerateToken(subjectID, stationID string, expiresIn time.Duration) (string, error) {
	f.issued = append(f.issued, issuedToken{subjectID, stationID, expiresIn})
	return "signed-token", nil
}

type RegistrySuite struct {
	suite.Suite

	issuer   *fakeIssuer
	registry *station.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	hash, err := secrets.Hash("station-key")
	s.Require().NoError(err)

	s.issuer = &fakeIssuer{}
	s.registry = station.NewRegistry(
		map[string]string{"station-1": hash},
		s.issuer,
		station.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		station.WithTokenTTL(30*time.Minute),
	)
}

func (s *RegistrySuite) TestValidKey() {
	token, ttl, err := s.registry.Token("station-1", "station-key", "emp-7")
	s.Require().NoError(err)
	s.Equal("signed-token", token)
	s.Equal(30*time.Minute, ttl)

	s.Require().Len(s.issuer.issued, 1)
	s.Equal("emp-7", s.issuer.issued[0].subjectID)
	s.Equal("station-1", s.issuer.issued[0].stationID)
	s.Equal(30*time.Minute, s.issuer.issued[0].expiresIn)
}

func (s *RegistrySuite) TestWrongKey() {
	_, _, err := s.registry.Token("station-1", "not-the-key", "emp-7")
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	s.Empty(s.issuer.issued)
}

func (s *RegistrySuite) TestUnknownStation() {
	_, _, err := s.registry.Token("station-9", "station-key", "emp-7")
	s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func (s *RegistrySuite) TestMissingFields() {
	_, _, err := s.registry.Token("", "station-key", "emp-7")
	s.Equal(dErrors.CodeInvalidInput, dErrors.CodeOf(err))

	_, _, err = s.registry.Token("station-1", "", "emp-7")
	s.Equal(dErrors.CodeInvalidInput, dErrors.CodeOf(err))

	_, _, err = s.registry.Token("station-1", "station-key", "")
	s.Equal(dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}
