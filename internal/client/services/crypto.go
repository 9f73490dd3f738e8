package services

import "github.com/dmitrijs2005/megasession/internal/cryptox"

// Crypto is the set of primitives the workflows need. *cryptox.Mega
// implements it; tests substitute single methods.
type Crypto interface {
	DeriveKey(password string) ([]byte, error)
	DeriveKeyV2(password string, salt []byte) (pk []byte, authKey string)
	RandomKey() []byte
	RandomBytes(n int) []byte
	EncryptBlock(key, buf []byte) ([]byte, error)
	DecryptBlock(key, buf []byte) ([]byte, error)
	UsernameHash(key []byte, email string) (string, error)
	DeriveSessionID(privk string, mk []byte, csid string) (string, error)
	GenerateRSAKeyPair(mk []byte) (*cryptox.RSAKeyPair, error)
}

var _ Crypto = (*cryptox.Mega)(nil)
