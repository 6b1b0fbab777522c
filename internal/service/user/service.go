package user

import (
	"context"
	"fmt"
	"net/url"

	"storefront/internal/domain"
)

type gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
	PutJSON(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Service wraps the manager-only user administration endpoints.
type Service struct {
	gw gateway
}

// New builds the user service.
func New(gw gateway) *Service {
	return &Service{gw: gw}
}

// List returns users filtered by an optional search string and role.
func (s *Service) List(ctx context.Context, query string, role domain.Role) ([]domain.User, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if role != "" {
		q.Set("role", string(role))
	}
	var users []domain.User
	if err := s.gw.GetJSON(ctx, "/users", q, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns one user with details.
func (s *Service) Get(ctx context.Context, userID int64) (domain.User, error) {
	var u domain.User
	if err := s.gw.GetJSON(ctx, fmt.Sprintf("/users/%d", userID), nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Create registers a user on behalf of a manager.
func (s *Service) Create(ctx context.Context, payload map[string]any) (domain.User, error) {
	var u domain.User
	if err := s.gw.PostJSON(ctx, "/users", payload, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Update patches user fields.
func (s *Service) Update(ctx context.Context, userID int64, payload map[string]any) (domain.User, error) {
	var u domain.User
	if err := s.gw.PutJSON(ctx, fmt.Sprintf("/users/%d", userID), payload, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	return s.gw.Delete(ctx, fmt.Sprintf("/users/%d", userID), nil)
}
