package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/megasession/internal/apierr"
	"github.com/dmitrijs2005/megasession/internal/chain"
	"github.com/dmitrijs2005/megasession/internal/client/client"
	"github.com/dmitrijs2005/megasession/internal/cryptox"
)

// RequestConfirmation asks the server to mail a confirmation link. The
// payload mk||rand(4)||zero(8)||rand(4) is encrypted under the password key
// so that only the password holder can complete the signup.
func (a *authService) RequestConfirmation(ctx context.Context, password string, mk []byte, name, email string) (Account, error) {
	pk, err := a.crypto.DeriveKey(password)
	if err != nil {
		return Account{}, err
	}
	payload := make([]byte, 0, 32)
	payload = append(payload, mk...)
	payload = append(payload, a.crypto.RandomBytes(4)...)
	payload = append(payload, make([]byte, 8)...)
	payload = append(payload, a.crypto.RandomBytes(4)...)
	c, err := a.crypto.EncryptBlock(pk, payload)
	if err != nil {
		return Account{}, err
	}

	_, err = a.client.CallSingle(ctx, client.Request{
		"a": "uc",
		"c": cryptox.B64Encode(c),
		"n": cryptox.B64Encode([]byte(name)),
		"m": cryptox.B64Encode([]byte(email)),
	})
	if err != nil {
		return Account{}, err
	}

	a.log.Info(ctx, "confirmation requested")
	return Account{Name: name, Email: email, Confirmation: c}, nil
}

// SendConfirmation redeems the code from the confirmation mail.
func (a *authService) SendConfirmation(ctx context.Context, code string) (Account, error) {
	raw, err := a.client.CallSingle(ctx, client.Request{"a": "ud", "c": code})
	if err != nil {
		return Account{}, err
	}
	var fields []string
	if err := decodeInto(raw, &fields, "confirmation"); err != nil {
		return Account{}, err
	}
	if len(fields) != 5 {
		return Account{}, apierr.New(apierr.Decode, fmt.Sprintf("confirmation: expected 5 fields, got %d", len(fields)))
	}

	email, err := b64(fields[0], "email")
	if err != nil {
		return Account{}, err
	}
	name, err := b64(fields[1], "name")
	if err != nil {
		return Account{}, err
	}
	emk, err := b64(fields[3], "master key")
	if err != nil {
		return Account{}, err
	}
	challenge, err := b64(fields[4], "challenge")
	if err != nil {
		return Account{}, err
	}

	return Account{
		Email:     string(email),
		Name:      string(name),
		UH:        fields[2],
		EMK:       emk,
		Challenge: challenge,
	}, nil
}

// RegisterUser creates an ephemeral account, logs into it, names it and
// requests the confirmation mail. The first failing step ends the workflow.
func (a *authService) RegisterUser(ctx context.Context, name, email, password string) (Account, error) {
	acc, err := chain.Run(ctx, Account{Name: name, Email: email, Password: password},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.RegisterEphemeral(ctx, acc.Password)
		},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.LoginEphemeral(ctx, acc.UH, acc.Password)
		},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.UpdateUser(ctx, UserUpdate{Name: acc.Name})
		},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.RequestConfirmation(ctx, acc.Password, acc.MK, acc.Name, acc.Email)
		},
	)
	if err != nil {
		return Account{}, err
	}
	a.log.Info(ctx, "registration pending confirmation", "uh", acc.UH)
	return acc, nil
}

// VerifyUser completes a registration: it logs into the ephemeral account,
// redeems the code, then upgrades the account with a new RSA key pair and
// the username hash. Only mk, uh and password are returned.
func (a *authService) VerifyUser(ctx context.Context, uh, password, code string) (Account, error) {
	acc, err := chain.Run(ctx, Account{UH: uh, Password: password},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.LoginEphemeral(ctx, acc.UH, acc.Password)
		},
		func(ctx context.Context, acc Account) (Account, error) {
			return a.SendConfirmation(ctx, code)
		},
		func(ctx context.Context, acc Account) (Account, error) {
			keys, err := a.crypto.GenerateRSAKeyPair(acc.MK)
			if err != nil {
				return Account{}, err
			}
			// Login hashes the lowercased email; the hash stored here must match it.
			hash, err := a.crypto.UsernameHash(acc.PK, strings.ToLower(acc.Email))
			if err != nil {
				return Account{}, err
			}
			return a.UpdateUser(ctx, UserUpdate{
				Code:       code,
				UH:         hash,
				PublicKey:  keys.PublicKey,
				PrivateKey: keys.PrivateKey,
			})
		},
	)
	if err != nil {
		return Account{}, err
	}
	a.log.Info(ctx, "account verified", "uh", acc.UH)
	return Account{MK: acc.MK, UH: acc.UH, Password: acc.Password}, nil
}
