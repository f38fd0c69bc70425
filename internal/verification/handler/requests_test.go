package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ConfirmRequestSuite tests ConfirmRequest validation.
type ConfirmRequestSuite struct {
	suite.Suite
}

func TestConfirmRequestSuite(t *testing.T) {
	suite.Run(t, new(ConfirmRequestSuite))
}

func (s *ConfirmRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := &ConfirmRequest{Code: " 123456 "}
		s.Require().NoError(req.Validate())
		s.Equal("123456", req.Code)
	})

	s.Run("oversize code rejected", func() {
		req := &ConfirmRequest{Code: strings.Repeat("1", 17)}

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "code must be at most")
	})

	s.Run("missing code rejected", func() {
		req := &ConfirmRequest{Code: "   "}

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "code is required")
	})

	s.Run("nil request rejected", func() {
		var req *ConfirmRequest
		s.Require().Error(req.Validate())
	})
}
