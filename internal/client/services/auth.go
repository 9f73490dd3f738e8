// Package services contains the account workflows of the engine.
// This file defines the authentication service: ephemeral account creation
// and login, full login, and the primitive user calls the registration
// workflows are built from.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/megasession/internal/apierr"
	"github.com/dmitrijs2005/megasession/internal/client/client"
	"github.com/dmitrijs2005/megasession/internal/cryptox"
	"github.com/dmitrijs2005/megasession/internal/logging"
)

// AuthService defines the account workflows.
//
// Contract:
//   - Every error from the transport or from a verification check is
//     returned unchanged; match it with errors.Is against apierr kinds.
//   - The session id is installed on the client only after it has been
//     verified, and only by LoginEphemeral, Login and LoginV2.
//   - No workflow retries on its own.
//
// All methods honor context cancellation.
type AuthService interface {
	RegisterEphemeral(ctx context.Context, password string) (Account, error)
	LoginEphemeral(ctx context.Context, uh, password string) (Account, error)
	Login(ctx context.Context, email, password string) (Account, error)
	PreLogin(ctx context.Context, email string) (PreLoginInfo, error)
	LoginV2(ctx context.Context, email, password string) (Account, error)
	GetUser(ctx context.Context) (Account, error)
	UpdateUser(ctx context.Context, fields UserUpdate) (Account, error)
	RequestConfirmation(ctx context.Context, password string, mk []byte, name, email string) (Account, error)
	SendConfirmation(ctx context.Context, code string) (Account, error)
	RegisterUser(ctx context.Context, name, email, password string) (Account, error)
	VerifyUser(ctx context.Context, uh, password, code string) (Account, error)
}

// authService is the concrete AuthService over one Client. It owns that
// client's session: two services must not share a client.
type authService struct {
	client client.Client
	crypto Crypto
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client.
// A nil log discards output.
func NewAuthService(c client.Client, crypto Crypto, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	return &authService{client: c, crypto: crypto, log: log}
}

// PreLoginInfo tells which key derivation an account uses.
type PreLoginInfo struct {
	Version int
	Salt    []byte
}

type loginResponse struct {
	K     string `json:"k"`
	TSID  string `json:"tsid"`
	Privk string `json:"privk"`
	CSID  string `json:"csid"`
	U     string `json:"u"`
}

func decodeInto(raw json.RawMessage, v any, what string) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return apierr.Wrap(apierr.Decode, "decode "+what, err)
	}
	return nil
}

func b64(s, what string) ([]byte, error) {
	b, err := cryptox.B64Decode(s)
	if err != nil {
		return nil, apierr.Wrap(apierr.Decode, "decode "+what, err)
	}
	return b, nil
}

// RegisterEphemeral creates an account with no email attached. The master
// key is random; ts = ts1||E_mk(ts1) lets a later login prove the server
// still holds the right key.
func (a *authService) RegisterEphemeral(ctx context.Context, password string) (Account, error) {
	pk, err := a.crypto.DeriveKey(password)
	if err != nil {
		return Account{}, err
	}
	mk := a.crypto.RandomKey()
	emk, err := a.crypto.EncryptBlock(pk, mk)
	if err != nil {
		return Account{}, err
	}
	ts1 := a.crypto.RandomBytes(16)
	ts2, err := a.crypto.EncryptBlock(mk, ts1)
	if err != nil {
		return Account{}, err
	}
	ts := append(append(make([]byte, 0, 32), ts1...), ts2...)

	raw, err := a.client.CallSingle(ctx, UserUpdate{
		Key: cryptox.B64Encode(emk),
		TS:  cryptox.B64Encode(ts),
	}.request())
	if err != nil {
		return Account{}, err
	}
	var uh string
	if err := decodeInto(raw, &uh, "user handle"); err != nil {
		return Account{}, err
	}

	a.log.Info(ctx, "ephemeral account created", "uh", uh)
	return Account{UH: uh, Password: password, TS: ts, MK: mk, PK: pk}, nil
}

// LoginEphemeral logs into an ephemeral account and verifies the issued
// tsid before installing it: its second half must equal the first half
// encrypted under the master key recovered with the password.
func (a *authService) LoginEphemeral(ctx context.Context, uh, password string) (Account, error) {
	raw, err := a.client.CallSingle(ctx, client.Request{"a": "us", "user": uh})
	if err != nil {
		return Account{}, err
	}
	var resp loginResponse
	if err := decodeInto(raw, &resp, "login response"); err != nil {
		return Account{}, err
	}

	pk, err := a.crypto.DeriveKey(password)
	if err != nil {
		return Account{}, err
	}
	mk, err := a.unwrapMasterKey(pk, resp.K)
	if err != nil {
		return Account{}, err
	}

	tsid, err := b64(resp.TSID, "tsid")
	if err != nil {
		return Account{}, err
	}
	if len(tsid) < 32 {
		a.log.Warn(ctx, "tsid rejected", "uh", uh, "reason", "short", "len", len(tsid))
		return Account{}, apierr.New(apierr.InvalidTsidLen, "session token shorter than 32 bytes")
	}
	ts1 := tsid[:16]
	ts2 := tsid[len(tsid)-16:]
	ts2ok, err := a.crypto.EncryptBlock(mk, ts1)
	if err != nil {
		return Account{}, err
	}
	if subtle.ConstantTimeCompare(ts2, ts2ok) != 1 {
		a.log.Warn(ctx, "tsid rejected", "uh", uh, "reason", "mismatch")
		return Account{}, apierr.New(apierr.InvalidTsid, "session token does not match the master key")
	}

	a.client.SetSessionID(resp.TSID, "")
	a.log.Info(ctx, "ephemeral login complete", "uh", uh)
	return Account{UH: uh, SID: resp.TSID, Password: password, PK: pk, MK: mk}, nil
}

// Login logs into a full account using the v1 key derivation.
func (a *authService) Login(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(email)

	pk, err := a.crypto.DeriveKey(password)
	if err != nil {
		return Account{}, err
	}
	hash, err := a.crypto.UsernameHash(pk, email)
	if err != nil {
		return Account{}, err
	}
	return a.fullLogin(ctx, email, password, pk, hash)
}

// PreLogin asks which key derivation the account uses.
func (a *authService) PreLogin(ctx context.Context, email string) (PreLoginInfo, error) {
	raw, err := a.client.CallSingle(ctx, client.Request{"a": "us0", "user": strings.ToLower(email)})
	if err != nil {
		return PreLoginInfo{}, err
	}
	var resp struct {
		V int    `json:"v"`
		S string `json:"s"`
	}
	if err := decodeInto(raw, &resp, "prelogin response"); err != nil {
		return PreLoginInfo{}, err
	}
	info := PreLoginInfo{Version: resp.V}
	if resp.S != "" {
		if info.Salt, err = b64(resp.S, "salt"); err != nil {
			return PreLoginInfo{}, err
		}
	}
	return info, nil
}

// LoginV2 runs PreLogin and logs in with the derivation the account uses.
func (a *authService) LoginV2(ctx context.Context, email, password string) (Account, error) {
	info, err := a.PreLogin(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if info.Version != 2 {
		return a.Login(ctx, email, password)
	}
	pk, authKey := a.crypto.DeriveKeyV2(password, info.Salt)
	return a.fullLogin(ctx, strings.ToLower(email), password, pk, authKey)
}

func (a *authService) fullLogin(ctx context.Context, email, password string, pk []byte, proof string) (Account, error) {
	raw, err := a.client.CallSingle(ctx, client.Request{"a": "us", "user": email, "uh": proof})
	if err != nil {
		return Account{}, err
	}
	var resp loginResponse
	if err := decodeInto(raw, &resp, "login response"); err != nil {
		return Account{}, err
	}

	mk, err := a.unwrapMasterKey(pk, resp.K)
	if err != nil {
		return Account{}, err
	}
	sid, err := a.crypto.DeriveSessionID(resp.Privk, mk, resp.CSID)
	if err != nil {
		a.log.Warn(ctx, "session id derivation failed", "email", email)
		return Account{}, apierr.Wrap(apierr.SidDecryptFail, "cannot decrypt session id", err)
	}

	a.client.SetSessionID(sid, "")
	a.log.Info(ctx, "login complete", "uh", resp.U)
	return Account{UH: resp.U, SID: sid, Email: email, Password: password, PK: pk, MK: mk}, nil
}

func (a *authService) unwrapMasterKey(pk []byte, k string) ([]byte, error) {
	wrapped, err := b64(k, "master key")
	if err != nil {
		return nil, err
	}
	if len(wrapped) != cryptox.KeySize {
		return nil, apierr.New(apierr.Decode, fmt.Sprintf("master key is %d bytes, want %d", len(wrapped), cryptox.KeySize))
	}
	mk, err := a.crypto.DecryptBlock(pk, wrapped)
	if err != nil {
		return nil, apierr.Wrap(apierr.Decode, "unwrap master key", err)
	}
	return mk, nil
}

// GetUser fetches the account record of the current session.
func (a *authService) GetUser(ctx context.Context) (Account, error) {
	raw, err := a.client.CallSingle(ctx, client.Request{"a": "ug"})
	if err != nil {
		return Account{}, err
	}
	var u User
	if err := decodeInto(raw, &u, "user"); err != nil {
		return Account{}, err
	}
	return Account{UH: u.Handle, Email: u.Email, Name: u.Name, User: &u}, nil
}

// UpdateUser sets account fields and returns the user handle.
func (a *authService) UpdateUser(ctx context.Context, fields UserUpdate) (Account, error) {
	raw, err := a.client.CallSingle(ctx, fields.request())
	if err != nil {
		return Account{}, err
	}
	var uh string
	if err := decodeInto(raw, &uh, "user handle"); err != nil {
		return Account{}, err
	}
	return Account{UH: uh}, nil
}
