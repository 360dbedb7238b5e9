package secrets

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "facegate/pkg/domain-errors"
)

type SecretsSuite struct {
	suite.Suite
}

func TestSecretsSuite(t *testing.T) {
	suite.Run(t, new(SecretsSuite))
}

func (s *SecretsSuite) TestGenerate() {
	s.Run("generates distinct secrets", func() {
		a, err := Generate()
		s.Require().NoError(err)
		b, err := Generate()
		s.Require().NoError(err)
		s.NotEmpty(a)
		s.NotEqual(a, b)
	})
}

func (s *SecretsSuite) TestHashAndVerify() {
	s.Run("round trip verifies", func() {
		hash, err := Hash("station-key-123")
		s.Require().NoError(err)
		s.NoError(Verify("station-key-123", hash))
	})

	s.Run("wrong secret is rejected", func() {
		hash, err := Hash("station-key-123")
		s.Require().NoError(err)
		err = Verify("station-key-456", hash)
		s.Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("empty secret cannot be hashed", func() {
		_, err := Hash("")
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})
}
