package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/megasession/internal/apierr"
	"github.com/dmitrijs2005/megasession/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) password() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// register creates an account and requests the confirmation mail. The
// printed handle is needed by verify.
func (a *App) register(ctx context.Context, args []string) error {
	name, err := a.arg(args, 0, "Enter name")
	if err != nil {
		return err
	}
	email, err := a.arg(args, 1, "Enter email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	acc, err := a.authService.RegisterUser(ctx, name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. Check %s for the confirmation code, then run:\n", acc.UH, acc.Email)
	fmt.Fprintf(a.out, "  verify %s <code>\n", acc.UH)
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	uh, err := a.arg(args, 0, "Enter user handle")
	if err != nil {
		return err
	}
	code, err := a.arg(args, 1, "Enter confirmation code")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	acc, err := a.authService.VerifyUser(ctx, uh, password, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s verified\n", acc.UH)
	return nil
}

// login logs in with whichever key derivation the account uses and prints
// the account record.
func (a *App) login(ctx context.Context, args []string) error {
	email, err := a.arg(args, 0, "Enter email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}

	acc, err := a.authService.LoginV2(ctx, email, password)
	if err != nil {
		return err
	}
	user, err := a.authService.GetUser(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", acc.UH)
	fmt.Fprintf(a.out, "  email: %s\n  name:  %s\n", user.Email, user.Name)
	return nil
}

func (a *App) ephemeral(ctx context.Context) error {
	password, err := a.password()
	if err != nil {
		return err
	}

	acc, err := a.authService.RegisterEphemeral(ctx, password)
	if err != nil {
		return err
	}
	if _, err := a.authService.LoginEphemeral(ctx, acc.UH, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Ephemeral account %s created\n", acc.UH)
	return nil
}

// errcode describes an API error given either its number or its name.
func (a *App) errcode(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: errcode <code|name>")
		return errUsage
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		var ok bool
		if code, ok = apierr.CodeOf(apierr.Kind(strings.ToUpper(args[0]))); !ok {
			return fmt.Errorf("errcode: unknown error %q", args[0])
		}
	}
	kind := apierr.NameFromCode(code)
	fmt.Fprintf(a.out, "%d %s: %s\n", code, kind, apierr.MessageFromName(kind))
	return nil
}
