package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/repository"
	"github.com/immochat/auth-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// OAuthConfig holds the provider settings for the Google sign-in flow.
// Endpoint URLs are overridable for tests.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Timeout      time.Duration
}

// oauthService implements OAuthService for Google.
type oauthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	timeout     time.Duration
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	minter      *SessionMinter
	logger      *zap.Logger
}

// NewOAuthService creates a Google OAuth service
func NewOAuthService(
	cfg OAuthConfig,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	minter *SessionMinter,
	logger *zap.Logger,
) OAuthService {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" && cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &oauthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		timeout:     timeout,
		userRepo:    userRepo,
		identRepo:   identRepo,
		minter:      minter,
		logger:      logger,
	}
}

// LoginURL returns the provider authorization URL for the given state.
func (s *oauthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// googleUserInfo is the provider userinfo payload.
type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleCallback exchanges the authorization code, resolves or creates the
// local user, links the external identity and mints a session. A failed
// link fails the whole sign-in: a user never ends up authenticated without
// a persisted identity link.
func (s *oauthService) HandleCallback(ctx context.Context, code string) (*AuthResponseWithRefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	profile := &domain.OAuthProfile{
		Provider:          "google",
		ProviderAccountID: info.Sub,
		Email:             utils.SanitizeEmail(info.Email),
		Name:              info.Name,
		ImageURL:          info.Picture,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
	}

	user, err := s.resolveUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.minter.Mint(ctx, user)
}

// resolveUser returns the local user for the provider identity. An existing
// link decides ownership outright, so a repeat sign-in never creates or
// touches a user row for a changed provider email. Otherwise the user is
// upserted by email and the link created; both writes are idempotent upserts
// on unique constraints, so two concurrent first-time sign-ins from the same
// identity converge on a single user row and a single link.
func (s *oauthService) resolveUser(ctx context.Context, profile *domain.OAuthProfile) (*domain.User, error) {
	if profile.ProviderAccountID == "" || profile.Email == "" {
		return nil, fmt.Errorf("provider profile missing account id or email")
	}

	link, err := s.identRepo.GetByProvider(ctx, profile.Provider, profile.ProviderAccountID)
	if err == nil {
		return s.signInLinkedUser(ctx, profile, link)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	candidate := &domain.User{
		Email: profile.Email,
		Name:  profile.Name,
		Role:  domain.RoleCustomer,
	}
	if profile.ImageURL != "" {
		candidate.ImageURL = &profile.ImageURL
	}

	user, err := s.userRepo.UpsertByEmail(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	link, err = s.identRepo.Link(ctx, identityFor(user.ID, profile))
	if err != nil {
		return nil, fmt.Errorf("failed to link identity: %w", err)
	}

	// A concurrent sign-in may have linked the identity to another user
	// first. The link wins: sign in as its owner.
	if link.UserID != user.ID {
		owner, err := s.userRepo.GetByID(ctx, link.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load linked user: %w", err)
		}
		return owner, nil
	}

	return user, nil
}

// signInLinkedUser loads the link owner and refreshes the stored provider
// tokens.
func (s *oauthService) signInLinkedUser(ctx context.Context, profile *domain.OAuthProfile, link *domain.ExternalIdentity) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked user: %w", err)
	}

	if _, err := s.identRepo.Link(ctx, identityFor(user.ID, profile)); err != nil {
		s.logger.Warn("failed to refresh provider tokens",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

func identityFor(userID string, profile *domain.OAuthProfile) *domain.ExternalIdentity {
	identity := &domain.ExternalIdentity{
		UserID:            userID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.ProviderAccountID,
	}
	if profile.AccessToken != "" {
		identity.AccessToken = &profile.AccessToken
	}
	if profile.RefreshToken != "" {
		identity.RefreshToken = &profile.RefreshToken
	}
	return identity
}

func (s *oauthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	return &info, nil
}
