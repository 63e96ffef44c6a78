package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docshare/internal/client/api"
	"github.com/dmitrijs2005/docshare/internal/client/session"
	"github.com/dmitrijs2005/docshare/internal/common"
)

func (a *App) ping(ctx context.Context, _ []string) error {
	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

// credentials prompts for email and password.
func (a *App) credentials() (string, []byte, error) {
	email, err := a.prompt.Line("Email")
	if err != nil {
		return "", nil, err
	}
	password, err := a.prompt.Secret("Password")
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) saveSession(email string, pair *api.TokenPair) error {
	return session.Save(a.config.SessionFile, &session.Session{
		Email:        email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (a *App) signup(ctx context.Context, args []string) error {
	role := common.RoleClient
	if len(args) > 1 {
		return ErrUsage
	}
	if len(args) == 1 {
		role = args[0]
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	pair, err := a.api.Signup(ctx, email, string(password), role)
	if err != nil {
		return err
	}
	if err := a.saveSession(email, pair); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed up as", email)
	if role != common.RoleOperations {
		fmt.Fprintln(a.out, "Check your email for the verification link, then log in again.")
	}
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := a.api.VerifyEmail(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Email verified")
	return nil
}

func (a *App) login(ctx context.Context, _ []string) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	pair, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorNotVerified) {
			fmt.Fprintln(a.out, "Email is not verified yet")
		}
		return err
	}
	if err := a.saveSession(email, pair); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in as", email)
	return nil
}

func (a *App) refresh(ctx context.Context, _ []string) error {
	s, err := session.Load(a.config.SessionFile)
	if err != nil {
		return err
	}

	pair, err := a.api.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return err
	}
	return a.saveSession(s.Email, pair)
}

func (a *App) logout(ctx context.Context, _ []string) error {
	s, err := session.Load(a.config.SessionFile)
	if err != nil {
		return err
	}

	if err := a.api.Logout(ctx, s.AccessToken, s.RefreshToken); err != nil && !errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	if err := session.Clear(a.config.SessionFile); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged out")
	return nil
}
