package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/interceptor"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
)

// Auth covers login, logout and the signed-in profile.
type Auth struct {
	log    *slog.Logger
	client *apiclient.Client
	creds  *credential.Store
	guard  *session.Guard
}

// NewAuth constructs the auth module.
func NewAuth(log *slog.Logger, client *apiclient.Client, creds *credential.Store, guard *session.Guard) *Auth {
	if log == nil {
		log = slog.Default()
	}
	return &Auth{log: log, client: client, creds: creds, guard: guard}
}

// Login exchanges credentials for a token and stores token and role together.
func (a *Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || password == "" {
		return LoginResult{}, ErrInvalidInput
	}

	raw, err := a.client.Do(ctx, apiclient.Request{
		Method:   "POST",
		Path:     "/auth/login",
		Body:     map[string]string{"email": email, "password": password},
		SkipAuth: true,
	})
	if err != nil {
		return LoginResult{}, err
	}

	token, role := interceptor.ParseTokenPayload(raw)
	if token == "" {
		return LoginResult{}, ErrNoToken
	}
	user := userFrom(raw)
	if role == "" && user != nil {
		role = user.Role
	}

	a.creds.Set(ctx, credential.Credential{Token: token, Role: role})
	a.log.Info("auth.login", "role", role)
	return LoginResult{Token: token, Role: role, User: user}, nil
}

// Logout invalidates the server session when reachable and always clears local credentials.
func (a *Auth) Logout(ctx context.Context) {
	if _, err := a.client.Do(ctx, apiclient.Request{Method: "POST", Path: "/auth/logout", Body: struct{}{}, SkipAuth: true}); err != nil {
		a.log.Warn("auth.logout.remote_fail", "err", err)
	}
	a.creds.Clear(ctx)
	a.log.Info("auth.logout")
}

// Profile returns the signed-in user.
func (a *Auth) Profile(ctx context.Context) (Profile, error) {
	raw, err := a.client.Get(ctx, "/auth/profile", nil)
	if err != nil {
		return Profile{}, err
	}
	if p := userFrom(raw); p != nil {
		return *p, nil
	}
	return apiclient.Decode[Profile](raw)
}

// LoginNotice returns the one-shot reason for the last forced logout.
func (a *Auth) LoginNotice() (string, bool) {
	if a.guard == nil {
		return "", false
	}
	return a.guard.ConsumeSessionMessage()
}

// userFrom reads a profile from a user or data member.
func userFrom(raw json.RawMessage) *Profile {
	var env struct {
		User *Profile `json:"user"`
		Data *Profile `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.User != nil && env.User.Email != "" {
		return env.User
	}
	if env.Data != nil && env.Data.Email != "" {
		return env.Data
	}
	return nil
}
