package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwellapp/inkwell/internal/client/repositories/metadata"
	"github.com/inkwellapp/inkwell/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates an account. The
// password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Println("Account created, you can log in now.")
	return nil
}

// Login prompts for credentials, authenticates, and persists the session
// token so later runs skip the login.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	if err := a.store.Metadata.Set(ctx, metadata.KeySessionToken, []byte(token)); err != nil {
		return err
	}
	a.userName = email
	a.syncer.Kick()

	fmt.Println("Success!")
	return nil
}

// Logout invalidates the session on the server and forgets the stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Println(err.Error())
	}
	if err := a.store.Metadata.Delete(ctx, metadata.KeySessionToken); err != nil {
		return err
	}
	a.userName = ""
	fmt.Println("Logged out.")
	return nil
}
