package service

import (
	"context"
	"errors"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/cryptox"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/accesshub/accesshub/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

// TokenService issues, refreshes, and revokes token pairs.
type TokenService struct {
	Signer        jwtx.Signer
	Verifier      jwtx.Verifier
	Store         store.Store
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SessionPolicy SessionPolicy
}

// GenerateTokenPair signs a fresh access/refresh pair for the given identity
// snapshot and persists the refresh fingerprint under the session policy.
func (s *TokenService) GenerateTokenPair(ctx context.Context, tc domain.TokenClaims) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	accessClaims := jwtx.NewAccessClaims(jwtx.AccessTokenInput{
		UserID:           tc.UserID,
		TenantID:         tc.TenantID,
		TenantName:       tc.TenantName,
		OrganizationID:   tc.OrganizationID,
		OrganizationName: tc.OrganizationName,
		Email:            tc.Email,
		Roles:            tc.Roles,
		Permissions:      tc.Permissions,
		MFAVerified:      tc.MFAVerified,
	}, string(idx.New()), s.Issuer, s.AccessTTL, now)

	accessToken, err := s.Signer.Sign(accessClaims)
	if err != nil {
		return nil, err
	}

	refreshJTI := string(idx.New())
	refreshClaims := jwtx.NewRefreshClaims(tc.UserID, refreshJTI, s.Issuer, s.RefreshTTL, now)
	refreshToken, err := s.Signer.Sign(refreshClaims)
	if err != nil {
		return nil, err
	}

	rec := domain.RefreshToken{
		UserID:    tc.UserID,
		JTI:       refreshJTI,
		TokenHash: cryptox.FingerprintToken(refreshToken),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return storeRefreshRecord(ctx, tx, s.SessionPolicy, rec)
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        s.AccessTTL,
		RefreshExpiresIn: s.RefreshTTL,
		TokenType:        domain.BearerTokenType,
	}, nil
}

// Login authenticates a user by email and password, runs the TOTP challenge
// for enrolled users, and issues a token pair carrying the identity snapshot.
func (s *TokenService) Login(ctx context.Context, email, password, mfaCode string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Burn comparable time so a missing account is not distinguishable
		// from a wrong password.
		_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Warn("login failed: bad password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.CanLogin() {
		l.Warn("login rejected: account not active", "user_id", user.ID, "status", user.Status)
		return nil, ErrInvalidState
	}

	mfaVerified := false
	if user.MFAEnrolled() {
		if mfaCode == "" {
			return nil, ErrMFARequired
		}
		if !totp.Validate(mfaCode, user.MFASecret) {
			l.Warn("login failed: bad totp code", "user_id", user.ID)
			return nil, ErrInvalidMFACode
		}
		mfaVerified = true
	}

	tc, err := s.snapshotClaims(ctx, user, mfaVerified)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	pair, err := s.GenerateTokenPair(ctx, tc)
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded", "user_id", user.ID, "mfa_verified", mfaVerified)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is validated,
// atomically consumed, and a fresh pair issued from the user's current
// grants. Each refresh token works exactly once; a replay (or two racing
// refreshes) fails for every caller but the first.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeRefresh); err != nil {
		return nil, ErrInvalidRefresh
	}

	hash := cryptox.FingerprintToken(refreshToken)

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().ConsumeRefreshToken(ctx, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		user, err = tx.Users().GetUserByID(ctx, claims.Subject)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			l.Warn("refresh rejected: token unknown or already used", "user_id", claims.Subject)
		}
		return nil, err
	}

	if !user.CanLogin() {
		return nil, ErrInvalidState
	}

	// The new access token reflects grants at refresh time, not at login.
	// MFA standing carries over from the enrolled state since the session
	// could not have started without passing the challenge.
	tc, err := s.snapshotClaims(ctx, user, user.MFAEnrolled())
	if err != nil {
		return nil, err
	}

	return s.GenerateTokenPair(ctx, tc)
}

// Logout revokes a session: both token jtis are blacklisted until their own
// expiries and the matching refresh record is removed. Revocation
// is effective immediately; a logged-out access token fails the blacklist
// check on its next use.
func (s *TokenService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		return ErrUnauthorized
	}
	if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
		return ErrUnauthorized
	}

	// The blacklist write must land before logout is acknowledged.
	expiresAt := claims.ExpiresAt.Time
	if err := s.Store.BlacklistedTokens().Add(ctx, claims.ID, expiresAt); err != nil {
		return err
	}

	if refreshToken != "" {
		// The refresh jti is blacklisted alongside the access jti so a
		// presented-but-somehow-retained refresh token is dead on both the
		// blacklist and the fingerprint check.
		if rc, err := s.Verifier.Verify(refreshToken); err == nil {
			if err := s.Store.BlacklistedTokens().Add(ctx, rc.ID, rc.ExpiresAt.Time); err != nil {
				return err
			}
		}
		hash := cryptox.FingerprintToken(refreshToken)
		if err := s.Store.RefreshTokens().ConsumeRefreshToken(ctx, hash); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	if s.SessionPolicy == SingleSession {
		if err := s.Store.RefreshTokens().DeleteUserRefreshTokens(ctx, claims.Subject); err != nil {
			return err
		}
	}

	l.Info("logout", "user_id", claims.Subject, "jti", claims.ID)
	return nil
}

// snapshotClaims assembles the identity snapshot baked into an access token.
func (s *TokenService) snapshotClaims(ctx context.Context, user domain.User, mfaVerified bool) (domain.TokenClaims, error) {
	tc := domain.TokenClaims{
		UserID:      user.ID,
		TenantID:    user.TenantID,
		Email:       user.Email,
		MFAVerified: mfaVerified,
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	tc.TenantName = tenant.Name

	if user.OrganizationID != "" {
		org, err := s.Store.Organizations().GetOrganizationByID(ctx, user.OrganizationID)
		if err != nil {
			return domain.TokenClaims{}, err
		}
		tc.OrganizationID = org.ID
		tc.OrganizationName = org.Name
	}

	roles, err := s.Store.Users().GetUserRoleNames(ctx, user.ID)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	tc.Roles = roles

	perms, err := s.Store.Users().GetUserPermissionKeys(ctx, user.ID)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	tc.Permissions = perms

	return tc, nil
}
