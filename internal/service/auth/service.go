package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"storefront/internal/domain"
)

type gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
	PostForm(ctx context.Context, path string, form url.Values, out any) error
}

// Service wraps the authentication endpoints.
type Service struct {
	gw gateway
}

// New builds the auth service.
func New(gw gateway) *Service {
	return &Service{gw: gw}
}

// LoginResult mirrors the token response of the login endpoint.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        domain.Role `json:"role"`
}

// Login exchanges credentials for a bearer token. The backend expects the
// OAuth2 password form, so this posts form-encoded fields, not JSON.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, errors.New("email and password required")
	}
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var res LoginResult
	if err := s.gw.PostForm(ctx, "/auth/login", form, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

// RegisterResult mirrors the creation response.
type RegisterResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Register creates a client account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	var res RegisterResult
	if err := s.gw.PostJSON(ctx, "/auth/register", in, &res); err != nil {
		return RegisterResult{}, err
	}
	return res, nil
}

// Me fetches the profile behind the current credential. Implements the
// session manager's ProfileFetcher.
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := s.gw.GetJSON(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
