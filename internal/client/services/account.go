package services

import "github.com/dmitrijs2005/megasession/internal/client/client"

// Account is the result of an auth workflow. Each step fills in the fields
// it learns; Merge lays a later step's fields over the earlier ones.
type Account struct {
	UH       string
	Password string
	Email    string
	Name     string
	SID      string

	// MK is the master key, PK the password-derived key wrapping it.
	MK []byte
	PK []byte
	// TS is ts1||ts2 sent when the ephemeral account was created.
	TS []byte
	// EMK is the master key wrapped under PK, as returned by the server.
	EMK []byte
	// Challenge is the confirmation challenge encrypted under PK.
	Challenge []byte
	// Confirmation is the encrypted payload sent with the confirmation
	// request.
	Confirmation []byte

	User *User
}

// Merge returns a with every non-zero field of next copied over it.
func (a Account) Merge(next Account) Account {
	if next.UH != "" {
		a.UH = next.UH
	}
	if next.Password != "" {
		a.Password = next.Password
	}
	if next.Email != "" {
		a.Email = next.Email
	}
	if next.Name != "" {
		a.Name = next.Name
	}
	if next.SID != "" {
		a.SID = next.SID
	}
	if len(next.MK) > 0 {
		a.MK = next.MK
	}
	if len(next.PK) > 0 {
		a.PK = next.PK
	}
	if len(next.TS) > 0 {
		a.TS = next.TS
	}
	if len(next.EMK) > 0 {
		a.EMK = next.EMK
	}
	if len(next.Challenge) > 0 {
		a.Challenge = next.Challenge
	}
	if len(next.Confirmation) > 0 {
		a.Confirmation = next.Confirmation
	}
	if next.User != nil {
		a.User = next.User
	}
	return a
}

// User is the account record returned by "ug".
type User struct {
	Handle     string `json:"u"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Confirmed  int    `json:"c,omitempty"`
	Key        string `json:"k,omitempty"`
	PublicKey  string `json:"pubk,omitempty"`
	PrivateKey string `json:"privk,omitempty"`
	TS         string `json:"ts,omitempty"`
	Since      int64  `json:"since,omitempty"`
}

// UserUpdate lists the fields an "up" call may set. Empty fields are not
// sent.
type UserUpdate struct {
	Name string
	// Code is the email verification code.
	Code string
	// UH is the username hash of a confirmed account.
	UH         string
	PublicKey  string
	PrivateKey string
	// Key is the wrapped master key, TS the ts1||ts2 token, both base64url.
	Key string
	TS  string
}

func (u UserUpdate) request() client.Request {
	req := client.Request{"a": "up"}
	set := func(k, v string) {
		if v != "" {
			req[k] = v
		}
	}
	set("name", u.Name)
	set("c", u.Code)
	set("uh", u.UH)
	set("pubk", u.PublicKey)
	set("privk", u.PrivateKey)
	set("k", u.Key)
	set("ts", u.TS)
	return req
}
