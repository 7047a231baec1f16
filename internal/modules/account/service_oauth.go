package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthProviderGoogle = "google"
	oauthStateTTL       = 10 * time.Minute
)

// oauthUserInfo holds the standardized user information extracted from Google.
type oauthUserInfo struct {
	ID    string
	Email string
	Name  string
}

func (s *service) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.config.Google.ClientID,
		ClientSecret: s.config.Google.ClientSecret,
		RedirectURL:  s.config.Google.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
	}
}

// signOAuthState wraps the random state ID in a short-lived HMAC-signed JWT so
// a forged or replayed state fails before any database lookup.
func (s *service) signOAuthState(stateID string, expiresAt time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{
		ID:        stateID,
		Issuer:    "gatherly-api",
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.StateSecret))
}

func (s *service) parseOAuthState(signed string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.StateSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("oauth state token missing id claim")
	}
	return claims.ID, nil
}

// InitiateOAuthLogin generates the Google redirect URL, persisting the
// state/PKCE-verifier pair so the callback can complete the handshake.
func (s *service) InitiateOAuthLogin(ctx context.Context) (string, error) {
	stateID, err := generateSecureToken(32)
	if err != nil {
		return "", ErrInternal.WithCause(fmt.Errorf("failed to generate oauth state: %w", err))
	}
	expiresAt := s.now().Add(oauthStateTTL)

	signedState, err := s.signOAuthState(stateID, expiresAt)
	if err != nil {
		return "", ErrInternal.WithCause(fmt.Errorf("failed to sign oauth state: %w", err))
	}

	verifier := oauth2.GenerateVerifier()
	err = s.repo.InsertOAuthState(ctx, &OAuthState{
		State:     stateID,
		Provider:  oauthProviderGoogle,
		Verifier:  verifier,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("failed to persist oauth state", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	url := s.googleOAuthConfig().AuthCodeURL(signedState,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	return url, nil
}

// HandleOAuthCallback processes the callback from Google. It verifies the
// signed state, exchanges the code for a token, fetches user info, finds or
// provisions a local account, and applies the same state gating as Login.
// Provisioned accounts carry the oauth provider marker and an unset password,
// keeping the one-time initial-password window open.
func (s *service) HandleOAuthCallback(ctx context.Context, state, code string) (*LoginResult, error) {
	stateID, err := s.parseOAuthState(state)
	if err != nil {
		return nil, ErrOAuthStateInvalid.WithCause(err)
	}

	stored, err := s.repo.GetOAuthStateByState(ctx, stateID)
	if err != nil {
		if errors.Is(err, ErrOAuthStateInvalid) {
			return nil, ErrOAuthStateInvalid
		}
		s.logger.Error("error getting oauth state", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrOAuthStateInvalid.WithDetail("The login attempt has expired. Please try again.")
	}
	defer func() {
		if err := s.repo.DeleteOAuthState(ctx, stateID); err != nil {
			s.logger.Error("failed to delete oauth state", "error", err)
		}
	}()

	cfg := s.googleOAuthConfig()
	oauthToken, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(stored.Verifier))
	if err != nil {
		return nil, ErrOAuthExchangeFailed.WithCause(fmt.Errorf("failed to exchange oauth code for token: %w", err))
	}

	userInfo, err := s.fetchGoogleUserInfo(ctx, cfg, oauthToken)
	if err != nil {
		return nil, ErrOAuthExchangeFailed.WithCause(err)
	}
	if userInfo.Email == "" {
		return nil, ErrOAuthEmailMissing
	}

	acct, err := s.repo.FindByEmail(ctx, userInfo.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to find account by email during oauth callback", "error", err)
			return nil, ErrInternal.WithCause(err)
		}
		acct, err = s.provisionOAuthAccount(ctx, userInfo.Email)
		if err != nil {
			return nil, err
		}
	}

	if acct.Suspended {
		return nil, ErrSuspended
	}
	if !acct.Active {
		return &LoginResult{Account: acct, NeedsReactivation: true}, nil
	}

	if err := s.repo.UpdateLastLogin(ctx, acct.ID, s.now()); err != nil {
		s.logger.Error("oauth login: last-login update failed", "error", err, "account_id", acct.ID)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("account logged in via oauth", "account_id", acct.ID)
	return &LoginResult{Account: acct}, nil
}

func (s *service) fetchGoogleUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*oauthUserInfo, error) {
	client := cfg.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response body: %w", err)
	}

	var userInfo struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}

	return &oauthUserInfo{ID: userInfo.ID, Email: userInfo.Email, Name: userInfo.Name}, nil
}

func (s *service) provisionOAuthAccount(ctx context.Context, email string) (*Account, error) {
	role, err := s.repo.GetRoleByName(ctx, RoleUser)
	if err != nil {
		s.logger.Error("oauth provisioning: default role missing", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	acct := &Account{
		ID:                id.String(),
		Email:             email,
		Active:            true,
		AuthProvider:      AuthProviderOAuth,
		PasswordSetByUser: false,
		RoleID:            role.ID,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		s.logger.Error("failed to create account from oauth", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	s.logger.Info("account provisioned via oauth", "account_id", acct.ID, "email", acct.Email)
	return acct, nil
}
