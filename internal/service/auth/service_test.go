package auth

import (
	"context"
	"net/url"
	"testing"

	"storefront/internal/domain"
)

type stubGateway struct {
	lastPath string
	lastForm url.Values
	result   any
	err      error
}

func (s *stubGateway) GetJSON(_ context.Context, path string, _ url.Values, out any) error {
	s.lastPath = path
	if s.err != nil {
		return s.err
	}
	if u, ok := out.(*domain.User); ok {
		*u = *(s.result.(*domain.User))
	}
	return nil
}

func (s *stubGateway) PostJSON(_ context.Context, path string, body, out any) error {
	s.lastPath = path
	return s.err
}

func (s *stubGateway) PostForm(_ context.Context, path string, form url.Values, out any) error {
	s.lastPath = path
	s.lastForm = form
	if s.err != nil {
		return s.err
	}
	if res, ok := out.(*LoginResult); ok {
		*res = LoginResult{AccessToken: "tok", TokenType: "bearer", Role: domain.RoleClient}
	}
	return nil
}

func TestLoginPostsOAuthForm(t *testing.T) {
	gw := &stubGateway{}
	svc := New(gw)

	res, err := svc.Login(context.Background(), " User@Example.COM ", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if gw.lastPath != "/auth/login" {
		t.Fatalf("path = %q", gw.lastPath)
	}
	if gw.lastForm.Get("username") != "user@example.com" {
		t.Fatalf("email not normalized: %q", gw.lastForm.Get("username"))
	}
	if gw.lastForm.Get("password") != "pw" {
		t.Fatalf("password field = %q", gw.lastForm.Get("password"))
	}
	if res.AccessToken != "tok" || res.Role != domain.RoleClient {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc := New(&stubGateway{})
	if _, err := svc.Login(context.Background(), "", "pw"); err == nil {
		t.Fatal("empty email should fail before the network")
	}
	if _, err := svc.Login(context.Background(), "a@b.c", ""); err == nil {
		t.Fatal("empty password should fail before the network")
	}
}

func TestMeFetchesProfile(t *testing.T) {
	gw := &stubGateway{result: &domain.User{ID: 4, Role: domain.RoleManager}}
	svc := New(gw)

	u, err := svc.Me(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gw.lastPath != "/auth/me" {
		t.Fatalf("path = %q", gw.lastPath)
	}
	if u.ID != 4 || u.Role != domain.RoleManager {
		t.Fatalf("unexpected profile: %+v", u)
	}
}
