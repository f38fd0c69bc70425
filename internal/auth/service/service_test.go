package service

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"sigil/internal/audit"
	"sigil/internal/auth/models"
	"sigil/internal/auth/signature"
	"sigil/internal/auth/store/account"
	"sigil/internal/auth/store/revocation"
	"sigil/internal/platform/config"
	"sigil/internal/token"
	"sigil/pkg/domain"
	"sigil/pkg/requestcontext"
)

const (
	testSourceIP  = "203.0.113.7"
	testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var testAuthConfig = config.AuthConfig{
	AccessTokenSecret:  "test-access-secret-needs-32-bytes",
	RefreshTokenSecret: "test-refresh-secret-needs-32-byte",
	AccessTokenTTL:     15 * time.Minute,
	RefreshTokenTTL:    720 * time.Hour,
	Issuer:             "sigil-test",
	NonceMaxAge:        24 * time.Hour,
	LockoutThreshold:   5,
	LockoutDuration:    15 * time.Minute,
	LoginHistoryLimit:  10,
}

type AuthServiceSuite struct {
	suite.Suite
	accounts *account.InMemoryAccountStore
	trl      *revocation.InMemoryTRL
	tokens   *token.Issuer
	sink     *audit.MemorySink
	svc      *Service

	key     *ecdsa.PrivateKey
	address string         // mixed-case hex, as wallets submit it
	wallet  domain.Address // canonical form
	now     time.Time
}

func (s *AuthServiceSuite) SetupSuite() {
	key, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.key = key
	s.address = crypto.PubkeyToAddress(key.PublicKey).Hex()

	wallet, err := domain.ParseAddress(s.address)
	s.Require().NoError(err)
	s.wallet = wallet
}

func (s *AuthServiceSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.accounts = account.New()
	s.trl = revocation.NewInMemoryTRL()
	s.tokens = token.NewIssuer(testAuthConfig, token.WithClock(func() time.Time { return s.now }))
	s.sink = audit.NewMemorySink(0)
	s.svc = New(s.accounts, s.trl, s.tokens, signature.NewEthereumRecoverer(),
		WithConfig(testAuthConfig),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
	)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

// signWith produces the wallet signature a browser extension would:
// EIP-191 personal-sign over the raw challenge string.
func (s *AuthServiceSuite) signWith(key *ecdsa.PrivateKey, message string) string {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	s.Require().NoError(err)
	return hexutil.Encode(sig)
}

func (s *AuthServiceSuite) register() *models.Account {
	created, err := s.svc.Register(s.ctx(), RegisterRequest{Address: s.address})
	s.Require().NoError(err)
	return created
}

func (s *AuthServiceSuite) challenge() string {
	result, err := s.svc.Challenge(s.ctx(), s.address)
	s.Require().NoError(err)
	return result.Nonce
}

func (s *AuthServiceSuite) login(nonce, sig string) (*models.TokenPair, error) {
	return s.svc.Login(s.ctx(), LoginRequest{
		Address:   s.address,
		Signature: sig,
		Nonce:     nonce,
		SourceIP:  testSourceIP,
		UserAgent: testUserAgent,
	})
}

func (s *AuthServiceSuite) mustLogin() *models.TokenPair {
	nonce := s.challenge()
	pair, err := s.login(nonce, s.signWith(s.key, nonce))
	s.Require().NoError(err)
	return pair
}

func (s *AuthServiceSuite) failedAttempts() int {
	found, err := s.accounts.FindByAddress(context.Background(), s.wallet)
	s.Require().NoError(err)
	return found.Auth.FailedAttempts
}

func (s *AuthServiceSuite) auditKinds() []audit.Kind {
	events, err := s.sink.List(context.Background())
	s.Require().NoError(err)
	kinds := make([]audit.Kind, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

// createWithStatus seeds an account in a non-active state, as an
// administrative action would leave it.
func (s *AuthServiceSuite) createWithStatus(address domain.Address, status models.AccountStatus) {
	acct, err := models.NewAccount(address, s.now)
	s.Require().NoError(err)
	acct.Status = status
	s.Require().NoError(s.accounts.Create(context.Background(), acct))
}

// TestRegister tests account creation and its failure modes.
func (s *AuthServiceSuite) TestRegister() {
	s.Run("creates an active holder account", func() {
		created := s.register()

		s.Equal(s.wallet, created.Address)
		s.Equal(models.StatusActive, created.Status)
		s.Equal([]domain.Role{domain.RoleHolder}, created.Roles)
		s.Contains(s.auditKinds(), audit.KindAccountRegistered)
	})

	s.Run("records events under the canonical address", func() {
		events, err := s.sink.ListBySubject(context.Background(), s.wallet.String())
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(audit.KindAccountRegistered, events[0].Kind)
	})

	s.Run("rejects a duplicate registration", func() {
		_, err := s.svc.Register(s.ctx(), RegisterRequest{Address: s.address})
		s.Require().ErrorIs(err, ErrAccountExists)
	})

	s.Run("rejects a malformed address", func() {
		_, err := s.svc.Register(s.ctx(), RegisterRequest{Address: "0xnot-an-address"})
		s.Require().ErrorIs(err, ErrInvalidAddress)
	})

	s.Run("keeps email unverified and parses roles case-insensitively", func() {
		other := domain.Address("0x8ba1f109551bd432803012645ac136ddd64dba72")
		created, err := s.svc.Register(s.ctx(), RegisterRequest{
			Address: string(other),
			Email:   "issuer@example.com",
			Roles:   []string{"Issuer", "holder"},
		})
		s.Require().NoError(err)
		s.False(created.EmailVerified)
		s.ElementsMatch([]domain.Role{domain.RoleIssuer, domain.RoleHolder}, created.Roles)
	})
}

// TestChallenge tests nonce issuance ahead of login.
func (s *AuthServiceSuite) TestChallenge() {
	s.Run("refuses an unregistered address", func() {
		_, err := s.svc.Challenge(s.ctx(), s.address)
		s.Require().ErrorIs(err, ErrUnknownIdentity)
	})

	s.Run("issues a nonce with the configured validity window", func() {
		s.register()

		result, err := s.svc.Challenge(s.ctx(), s.address)
		s.Require().NoError(err)
		s.NotEmpty(result.Nonce)
		s.Equal(s.now, result.IssuedAt)
		s.Equal(s.now.Add(testAuthConfig.NonceMaxAge), result.ExpiresAt)
		s.Contains(s.auditKinds(), audit.KindChallengeIssued)
	})

	s.Run("a fresh challenge invalidates the prior one", func() {
		first := s.challenge()
		second := s.challenge()
		s.NotEqual(first, second)

		_, err := s.login(first, s.signWith(s.key, first))
		s.Require().ErrorIs(err, ErrNonceExpired)
		s.Zero(s.failedAttempts(), "a stale nonce is not a signature failure")

		_, err = s.login(second, s.signWith(s.key, second))
		s.Require().NoError(err)
	})
}

// TestLogin tests the happy path of the challenge-response flow.
func (s *AuthServiceSuite) TestLogin() {
	s.register()
	nonce := s.challenge()

	pair, err := s.login(nonce, s.signWith(s.key, nonce))
	s.Require().NoError(err)

	s.Run("returns a full token pair", func() {
		s.NotEmpty(pair.AccessToken)
		s.NotEmpty(pair.RefreshToken)
		s.Equal("Bearer", pair.TokenType)
		s.Equal(int64(testAuthConfig.AccessTokenTTL.Seconds()), pair.ExpiresIn)

		claims, err := s.tokens.Validate(pair.AccessToken, token.KindAccess)
		s.Require().NoError(err)
		s.Equal(s.wallet.String(), claims.Address)
	})

	s.Run("consumes the challenge", func() {
		found, err := s.accounts.FindByAddress(context.Background(), s.wallet)
		s.Require().NoError(err)
		s.Nil(found.Auth.Nonce)
	})

	s.Run("records the login with client metadata", func() {
		found, err := s.accounts.FindByAddress(context.Background(), s.wallet)
		s.Require().NoError(err)
		s.Require().Len(found.Security.LoginHistory, 1)
		entry := found.Security.LoginHistory[0]
		s.Equal(s.now, entry.At)
		s.Equal(testSourceIP, entry.SourceIP)
		s.Contains(entry.Device, "Chrome")
		s.Contains(s.auditKinds(), audit.KindLoginSucceeded)
	})

	s.Run("rejects a replay of the consumed challenge", func() {
		_, err := s.login(nonce, s.signWith(s.key, nonce))
		s.Require().ErrorIs(err, ErrUnknownIdentity)
	})
}

// TestLoginSignatureFailures tests the two signature rejection modes and
// their attempt bookkeeping.
func (s *AuthServiceSuite) TestLoginSignatureFailures() {
	s.register()
	nonce := s.challenge()

	s.Run("rejects a signature from another wallet", func() {
		other, err := crypto.GenerateKey()
		s.Require().NoError(err)

		_, err = s.login(nonce, s.signWith(other, nonce))
		s.Require().ErrorIs(err, ErrSignatureMismatch)
		s.Equal(1, s.failedAttempts())
		s.Contains(s.auditKinds(), audit.KindLoginFailed)
	})

	s.Run("rejects an undecodable signature", func() {
		_, err := s.login(nonce, "0xdeadbeef")
		s.Require().ErrorIs(err, ErrSignatureRecovery)
		s.Equal(2, s.failedAttempts())
	})

	s.Run("a failed attempt does not burn the challenge", func() {
		_, err := s.login(nonce, s.signWith(s.key, nonce))
		s.Require().NoError(err)
		s.Zero(s.failedAttempts(), "success resets the counter")
	})
}

// TestLockout tests the failed-attempt threshold, the locked window and
// its expiry.
func (s *AuthServiceSuite) TestLockout() {
	s.register()
	nonce := s.challenge()

	other, err := crypto.GenerateKey()
	s.Require().NoError(err)
	forged := s.signWith(other, nonce)

	for i := 0; i < testAuthConfig.LockoutThreshold; i++ {
		_, err := s.login(nonce, forged)
		s.Require().ErrorIs(err, ErrSignatureMismatch)
	}
	s.Contains(s.auditKinds(), audit.KindAccountLocked)

	s.Run("locked accounts are refused outright", func() {
		_, err := s.login(nonce, s.signWith(s.key, nonce))
		s.Require().ErrorIs(err, ErrAccountLocked)

		_, err = s.svc.Challenge(s.ctx(), s.address)
		s.Require().ErrorIs(err, ErrAccountLocked)
	})

	s.Run("the lock expires and the counter restarts", func() {
		s.now = s.now.Add(testAuthConfig.LockoutDuration + time.Minute)

		pair := s.mustLogin()
		s.NotEmpty(pair.AccessToken)
		s.Zero(s.failedAttempts())
	})
}

// TestLoginNonceExpiry tests that an aged challenge is refused without
// counting as a signature failure.
func (s *AuthServiceSuite) TestLoginNonceExpiry() {
	s.register()
	nonce := s.challenge()

	s.now = s.now.Add(testAuthConfig.NonceMaxAge + time.Second)

	_, err := s.login(nonce, s.signWith(s.key, nonce))
	s.Require().ErrorIs(err, ErrNonceExpired)
	s.Zero(s.failedAttempts())
}

// TestRefresh tests access-token rotation against the revocation list.
func (s *AuthServiceSuite) TestRefresh() {
	s.register()
	pair := s.mustLogin()

	s.Run("rotates the access token only", func() {
		rotated, err := s.svc.Refresh(s.ctx(), pair.RefreshToken)
		s.Require().NoError(err)
		s.NotEmpty(rotated.AccessToken)
		s.Empty(rotated.RefreshToken, "the original refresh token stays in force")

		claims, err := s.tokens.Validate(rotated.AccessToken, token.KindAccess)
		s.Require().NoError(err)
		s.Equal(s.wallet.String(), claims.Address)
	})

	s.Run("rejects an access token in the refresh slot", func() {
		_, err := s.svc.Refresh(s.ctx(), pair.AccessToken)
		s.Require().ErrorIs(err, token.ErrWrongTokenKind)
	})

	s.Run("rejects garbage", func() {
		_, err := s.svc.Refresh(s.ctx(), "not-a-token")
		s.Require().ErrorIs(err, token.ErrTokenInvalid)
	})

	s.Run("rejects a revoked refresh token", func() {
		s.Require().NoError(s.svc.Logout(s.ctx(), pair.RefreshToken))

		_, err := s.svc.Refresh(s.ctx(), pair.RefreshToken)
		s.Require().ErrorIs(err, token.ErrTokenInvalid)
	})
}

// TestLogout tests revocation and its idempotency.
func (s *AuthServiceSuite) TestLogout() {
	s.register()
	pair := s.mustLogin()

	s.Run("revokes the refresh token", func() {
		s.Require().NoError(s.svc.Logout(s.ctx(), pair.RefreshToken))

		_, err := s.svc.Refresh(s.ctx(), pair.RefreshToken)
		s.Require().ErrorIs(err, token.ErrTokenInvalid)
		s.Contains(s.auditKinds(), audit.KindLoggedOut)
	})

	s.Run("is idempotent", func() {
		s.Require().NoError(s.svc.Logout(s.ctx(), pair.RefreshToken))
	})

	s.Run("swallows tokens it cannot parse", func() {
		s.Require().NoError(s.svc.Logout(s.ctx(), "junk"))
	})
}

// TestAuthenticate tests access-token validation for request middleware.
func (s *AuthServiceSuite) TestAuthenticate() {
	s.register()
	pair := s.mustLogin()

	s.Run("returns the wallet for a valid access token", func() {
		wallet, err := s.svc.Authenticate(s.ctx(), pair.AccessToken)
		s.Require().NoError(err)
		s.Equal(s.wallet, wallet)
	})

	s.Run("rejects a refresh token", func() {
		_, err := s.svc.Authenticate(s.ctx(), pair.RefreshToken)
		s.Require().ErrorIs(err, token.ErrWrongTokenKind)
	})

	s.Run("rejects a token for an unregistered wallet", func() {
		ghost := domain.Address("0x0000000000000000000000000000000000000001")
		raw, err := s.tokens.Issue(ghost, token.KindAccess)
		s.Require().NoError(err)

		_, err = s.svc.Authenticate(s.ctx(), raw)
		s.Require().ErrorIs(err, ErrUnknownIdentity)
	})

	s.Run("refuses a suspended account even with a valid token", func() {
		suspended := domain.Address("0x0000000000000000000000000000000000000002")
		s.createWithStatus(suspended, models.StatusSuspended)
		raw, err := s.tokens.Issue(suspended, token.KindAccess)
		s.Require().NoError(err)

		_, err = s.svc.Authenticate(s.ctx(), raw)
		s.Require().ErrorIs(err, ErrAccountSuspended)
	})
}

// TestStatusGate tests that non-active accounts are refused before any
// challenge or signature work happens.
func (s *AuthServiceSuite) TestStatusGate() {
	suspended := domain.Address("0x0000000000000000000000000000000000000003")
	blacklisted := domain.Address("0x0000000000000000000000000000000000000004")
	s.createWithStatus(suspended, models.StatusSuspended)
	s.createWithStatus(blacklisted, models.StatusBlacklisted)

	s.Run("suspended accounts cannot request a challenge", func() {
		_, err := s.svc.Challenge(s.ctx(), string(suspended))
		s.Require().ErrorIs(err, ErrAccountSuspended)
	})

	s.Run("blacklisted accounts cannot request a challenge", func() {
		_, err := s.svc.Challenge(s.ctx(), string(blacklisted))
		s.Require().ErrorIs(err, ErrAccountBlacklisted)
	})

	s.Run("suspended accounts cannot log in", func() {
		_, err := s.svc.Login(s.ctx(), LoginRequest{
			Address:   string(suspended),
			Signature: "0x00",
			Nonce:     "whatever",
		})
		s.Require().ErrorIs(err, ErrAccountSuspended)
	})
}

// TestHistory tests ordering and the unknown-identity case.
func (s *AuthServiceSuite) TestHistory() {
	s.Run("refuses an unregistered address", func() {
		_, err := s.svc.History(s.ctx(), s.wallet)
		s.Require().ErrorIs(err, ErrUnknownIdentity)
	})

	s.Run("returns logins newest first", func() {
		s.register()
		first := s.now
		s.mustLogin()

		s.now = s.now.Add(time.Hour)
		second := s.now
		s.mustLogin()

		history, err := s.svc.History(s.ctx(), s.wallet)
		s.Require().NoError(err)
		s.Require().Len(history.Logins, 2)
		s.Equal(second, history.Logins[0].At)
		s.Equal(first, history.Logins[1].At)
		s.Require().NotNil(history.LastLogin)
		s.Equal(second, *history.LastLogin)
	})
}
