package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

const validAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

// LoginRequestSuite tests LoginRequest validation.
type LoginRequestSuite struct {
	suite.Suite
}

func TestLoginRequestSuite(t *testing.T) {
	suite.Run(t, new(LoginRequestSuite))
}

func (s *LoginRequestSuite) validRequest() *LoginRequest {
	return &LoginRequest{
		Address:   validAddress,
		Signature: "0x" + strings.Repeat("ab", 65),
		Nonce:     "bm9uY2U",
	}
}

// TestValidation verifies size limit enforcement on LoginRequest.
func (s *LoginRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		err := s.validRequest().Validate()
		s.NoError(err)
	})

	s.Run("oversize address rejected", func() {
		req := s.validRequest()
		req.Address = "0x" + strings.Repeat("a", 63)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address must be at most")
	})

	s.Run("oversize signature rejected", func() {
		req := s.validRequest()
		req.Signature = "0x" + strings.Repeat("ab", 128)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "signature must be at most")
	})

	s.Run("oversize nonce rejected", func() {
		req := s.validRequest()
		req.Nonce = strings.Repeat("a", 513)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "nonce must be at most")
	})
}

// TestRequiredFields verifies required field enforcement.
func (s *LoginRequestSuite) TestRequiredFields() {
	s.Run("missing address rejected", func() {
		req := s.validRequest()
		req.Address = "   "

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("missing signature rejected", func() {
		req := s.validRequest()
		req.Signature = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "signature is required")
	})

	s.Run("missing nonce rejected", func() {
		req := s.validRequest()
		req.Nonce = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "nonce is required")
	})

	s.Run("nil request rejected", func() {
		var req *LoginRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

// TestTrimming verifies whitespace normalization during validation.
func (s *LoginRequestSuite) TestTrimming() {
	req := s.validRequest()
	req.Address = "  " + validAddress + "  "
	req.Nonce = " bm9uY2U "

	s.Require().NoError(req.Validate())
	s.Equal(validAddress, req.Address)
	s.Equal("bm9uY2U", req.Nonce)
}

// RegisterAccountRequestSuite tests RegisterAccountRequest validation.
type RegisterAccountRequestSuite struct {
	suite.Suite
}

func TestRegisterAccountRequestSuite(t *testing.T) {
	suite.Run(t, new(RegisterAccountRequestSuite))
}

func (s *RegisterAccountRequestSuite) validRequest() *RegisterAccountRequest {
	return &RegisterAccountRequest{
		Address: validAddress,
		Email:   "holder@example.com",
		Roles:   []string{"holder"},
	}
}

// TestValidation verifies limits and the email shape check.
func (s *RegisterAccountRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		err := s.validRequest().Validate()
		s.NoError(err)
	})

	s.Run("address only is enough", func() {
		req := &RegisterAccountRequest{Address: validAddress}
		err := req.Validate()
		s.NoError(err)
	})

	s.Run("oversize email rejected", func() {
		req := s.validRequest()
		req.Email = strings.Repeat("a", 250) + "@x.io"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "email must be at most")
	})

	s.Run("email without at sign rejected", func() {
		req := s.validRequest()
		req.Email = "not-an-email"

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "email is invalid")
	})

	s.Run("too many roles rejected", func() {
		req := s.validRequest()
		req.Roles = make([]string, 9)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "too many roles")
	})

	s.Run("missing address rejected", func() {
		req := s.validRequest()
		req.Address = ""

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("nil request rejected", func() {
		var req *RegisterAccountRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

// RefreshRequestSuite tests the refresh and logout bodies.
type RefreshRequestSuite struct {
	suite.Suite
}

func TestRefreshRequestSuite(t *testing.T) {
	suite.Run(t, new(RefreshRequestSuite))
}

// TestValidation verifies the shared refresh-token body rules.
func (s *RefreshRequestSuite) TestValidation() {
	s.Run("valid refresh request passes", func() {
		req := &RefreshRequest{RefreshToken: "eyJ.token.sig"}
		s.NoError(req.Validate())
	})

	s.Run("missing token rejected", func() {
		req := &RefreshRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "refreshToken is required")
	})

	s.Run("oversize token rejected", func() {
		req := &RefreshRequest{RefreshToken: strings.Repeat("a", 4097)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "refreshToken must be at most")
	})

	s.Run("logout body follows the same rules", func() {
		s.NoError((&LogoutRequest{RefreshToken: "eyJ.token.sig"}).Validate())

		err := (&LogoutRequest{}).Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "refreshToken is required")
	})

	s.Run("nil request rejected", func() {
		var req *RefreshRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

// ChallengeRequestSuite tests ChallengeRequest validation.
type ChallengeRequestSuite struct {
	suite.Suite
}

func TestChallengeRequestSuite(t *testing.T) {
	suite.Run(t, new(ChallengeRequestSuite))
}

// TestValidation verifies the single-field body.
func (s *ChallengeRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := &ChallengeRequest{Address: validAddress}
		s.NoError(req.Validate())
	})

	s.Run("address is trimmed", func() {
		req := &ChallengeRequest{Address: " " + validAddress + " "}
		s.Require().NoError(req.Validate())
		s.Equal(validAddress, req.Address)
	})

	s.Run("missing address rejected", func() {
		req := &ChallengeRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("oversize address rejected", func() {
		req := &ChallengeRequest{Address: strings.Repeat("a", 65)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address must be at most")
	})
}
