package service_test

import (
	"strconv"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-reservation/internal/service"
)

const testSecret = "test-secret"

func newAuth() (*service.AuthService, *memory.Store) {
	st := memory.New()
	return service.NewAuthService(st, service.AuthOptions{
		JWTSecret:      testSecret,
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}), st
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuth()
	s, err := auth.Register(ctx, service.RegisterInput{Email: " Carol@Example.com ", Password: "hunter2hunter2", Name: "Carol"})
	if err != nil {
		t.Fatal(err)
	}
	if s.User.Email != "carol@example.com" || s.User.Role != model.RoleUser || s.Access.Token == "" || s.Refresh.Raw == "" {
		t.Fatalf("session %+v", s)
	}

	tok, err := jwt.Parse(s.Access.Token, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	if err != nil {
		t.Fatal(err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"] != strconv.FormatUint(s.User.ID, 10) || claims["role"] != model.RoleUser {
		t.Fatalf("claims %v", claims)
	}

	_, err = auth.Register(ctx, service.RegisterInput{Email: "carol@example.com", Password: "another-pass"})
	wantKind(t, err, apperror.KindConflict)
	_, err = auth.Register(ctx, service.RegisterInput{Email: "dave@example.com", Password: "short"})
	wantKind(t, err, apperror.KindInvalidArgument)

	if _, err := auth.Login(ctx, "CAROL@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = auth.Login(ctx, "carol@example.com", "wrong-password")
	wantKind(t, err, apperror.KindUnauthorized)
	_, err = auth.Login(ctx, "nobody@example.com", "hunter2hunter2")
	wantKind(t, err, apperror.KindUnauthorized)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	auth, _ := newAuth()
	s, err := auth.Register(ctx, service.RegisterInput{Email: "erin@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatal(err)
	}
	next, err := auth.Refresh(ctx, s.Refresh.Raw)
	if err != nil {
		t.Fatal(err)
	}
	_, err = auth.Refresh(ctx, s.Refresh.Raw)
	wantKind(t, err, apperror.KindUnauthorized)

	if err := auth.Logout(ctx, 0, next.Refresh.Raw); err != nil {
		t.Fatal(err)
	}
	_, err = auth.Refresh(ctx, next.Refresh.Raw)
	wantKind(t, err, apperror.KindUnauthorized)

	third, err := auth.Login(ctx, "erin@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if err := auth.Logout(ctx, third.User.ID, ""); err != nil {
		t.Fatal(err)
	}
	_, err = auth.Refresh(ctx, third.Refresh.Raw)
	wantKind(t, err, apperror.KindUnauthorized)

	wantKind(t, auth.Logout(ctx, 0, ""), apperror.KindInvalidArgument)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	auth, st := newAuth()
	for i := 0; i < 2; i++ {
		if err := auth.EnsureAdmin(ctx, "root@example.com", "admin-password"); err != nil {
			t.Fatal(err)
		}
	}
	u, err := st.UserByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != model.RoleAdmin {
		t.Fatalf("role %s", u.Role)
	}
	me, err := auth.Me(ctx, u.ID)
	if err != nil || me.Email != u.Email {
		t.Fatalf("me %+v %v", me, err)
	}
	_, err = auth.Me(ctx, 999)
	wantKind(t, err, apperror.KindNotFound)

	if err := auth.EnsureAdmin(ctx, "", ""); err != nil {
		t.Fatal(err)
	}
}
