package handler

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// RegisterDocumentRequestSuite tests RegisterDocumentRequest validation.
type RegisterDocumentRequestSuite struct {
	suite.Suite
}

func TestRegisterDocumentRequestSuite(t *testing.T) {
	suite.Run(t, new(RegisterDocumentRequestSuite))
}

func (s *RegisterDocumentRequestSuite) validRequest() *RegisterDocumentRequest {
	return &RegisterDocumentRequest{
		Title:     "Diploma 2025",
		DocType:   "diploma",
		Recipient: "0x2222222222222222222222222222222222222222",
		Content:   base64.StdEncoding.EncodeToString([]byte("document body")),
	}
}

// TestValidation verifies size limit enforcement.
func (s *RegisterDocumentRequestSuite) TestValidation() {
	s.Run("valid request passes and decodes", func() {
		req := s.validRequest()
		s.Require().NoError(req.Validate())
		s.Equal([]byte("document body"), req.DocumentBytes())
	})

	s.Run("oversize title rejected", func() {
		req := s.validRequest()
		req.Title = strings.Repeat("a", 257)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "title must be at most")
	})

	s.Run("oversize docType rejected", func() {
		req := s.validRequest()
		req.DocType = strings.Repeat("a", 33)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "docType must be at most")
	})

	s.Run("oversize recipient rejected", func() {
		req := s.validRequest()
		req.Recipient = "0x" + strings.Repeat("a", 63)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "recipient must be at most")
	})

	s.Run("oversize content rejected", func() {
		req := s.validRequest()
		req.Content = strings.Repeat("A", maxEncodedContent+4)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "content exceeds")
	})
}

// TestRequiredFields verifies required field enforcement.
func (s *RegisterDocumentRequestSuite) TestRequiredFields() {
	s.Run("missing title rejected", func() {
		req := s.validRequest()
		req.Title = "   "

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "title is required")
	})

	s.Run("missing docType rejected", func() {
		req := s.validRequest()
		req.DocType = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "docType is required")
	})

	s.Run("missing recipient rejected", func() {
		req := s.validRequest()
		req.Recipient = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "recipient is required")
	})

	s.Run("missing content rejected", func() {
		req := s.validRequest()
		req.Content = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "content is required")
	})

	s.Run("empty payload rejected", func() {
		req := s.validRequest()
		req.Content = base64.StdEncoding.EncodeToString(nil)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "content is required")
	})

	s.Run("nil request rejected", func() {
		var req *RegisterDocumentRequest
		s.Require().Error(req.Validate())
	})
}

// TestContentDecoding verifies the base64 handling.
func (s *RegisterDocumentRequestSuite) TestContentDecoding() {
	req := s.validRequest()
	req.Content = "not//valid??base64"

	err := req.Validate()
	s.Require().Error(err)
	s.Contains(err.Error(), "base64")
}
