// Package cryptox implements the cryptographic primitives of the storage
// provider's account protocol: the password key schedule, AES-128-ECB block
// wrapping, the username hash, the MPI-encoded RSA key material and the
// base64url flavour used on the wire.
//
// Parameters follow the provider's published protocol and must match it bit
// for bit; nothing here is tunable except the RSA modulus size of newly
// generated key pairs.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/megasession/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of mk and pk.
	KeySize = 16

	keyScheduleRounds = 0x10000
	hashRounds        = 0x4000
	v2Iterations      = 100000
)

var ErrBlockSize = errors.New("cryptox: buffer is not a multiple of the block size")

// initial state of the password key schedule
var pkeyInit = []byte{
	0x93, 0xc4, 0x67, 0xe3, 0x7d, 0xb0, 0xc7, 0xa4,
	0xd1, 0xbe, 0x3f, 0x81, 0x01, 0x52, 0xcb, 0x56,
}

// Mega is the concrete crypto capability used by the auth workflows.
type Mega struct {
	rsaBits int
}

// NewMega returns a Mega generating RSA keys of rsaBits bits. Zero means
// 2048.
func NewMega(rsaBits int) *Mega {
	if rsaBits <= 0 {
		rsaBits = 2048
	}
	return &Mega{rsaBits: rsaBits}
}

// DeriveKey runs the v1 password key schedule: the password is split into
// zero-padded 16-byte AES keys and the fixed initial block is encrypted
// under each of them in turn, 65536 times.
func (m *Mega) DeriveKey(password string) ([]byte, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	ciphers := make([]cipher.Block, 0, (len(pw)+KeySize-1)/KeySize)
	for off := 0; off < len(pw); off += KeySize {
		chunk := make([]byte, KeySize)
		copy(chunk, pw[off:])
		c, err := aes.NewCipher(chunk)
		common.WipeByteArray(chunk)
		if err != nil {
			return nil, err
		}
		ciphers = append(ciphers, c)
	}

	pkey := make([]byte, KeySize)
	copy(pkey, pkeyInit)
	for r := 0; r < keyScheduleRounds; r++ {
		for _, c := range ciphers {
			c.Encrypt(pkey, pkey)
		}
	}
	return pkey, nil
}

// DeriveKeyV2 is the v2 key derivation: PBKDF2-HMAC-SHA512 over the
// password and the server-issued salt. The first half of the output is pk,
// the second half is sent to the server as the login proof.
func (m *Mega) DeriveKeyV2(password string, salt []byte) (pk []byte, authKey string) {
	dk := pbkdf2.Key([]byte(password), salt, v2Iterations, 2*KeySize, sha512.New)
	pk = append([]byte(nil), dk[:KeySize]...)
	authKey = B64Encode(dk[KeySize:])
	common.WipeByteArray(dk)
	return pk, authKey
}

// RandomKey returns a fresh 128-bit key.
func (m *Mega) RandomKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// RandomBytes returns n random bytes.
func (m *Mega) RandomBytes(n int) []byte {
	return common.GenerateRandByteArray(n)
}

// EncryptBlock encrypts buf with AES-128 in ECB mode. len(buf) must be a
// multiple of 16.
func (m *Mega) EncryptBlock(key, buf []byte) ([]byte, error) {
	return ecb(key, buf, true)
}

// DecryptBlock is the inverse of EncryptBlock.
func (m *Mega) DecryptBlock(key, buf []byte) ([]byte, error) {
	return ecb(key, buf, false)
}

func ecb(key, buf []byte, encrypt bool) ([]byte, error) {
	if len(buf)%aes.BlockSize != 0 {
		return nil, ErrBlockSize
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	for off := 0; off < len(buf); off += aes.BlockSize {
		if encrypt {
			c.Encrypt(out[off:off+aes.BlockSize], buf[off:off+aes.BlockSize])
		} else {
			c.Decrypt(out[off:off+aes.BlockSize], buf[off:off+aes.BlockSize])
		}
	}
	return out, nil
}

// UsernameHash folds email into a 16-byte block, encrypts it 16384 times
// under key and returns bytes 0..3 and 8..11, base64url-encoded.
func (m *Mega) UsernameHash(key []byte, email string) (string, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	h := make([]byte, aes.BlockSize)
	for i, b := range []byte(email) {
		h[i%aes.BlockSize] ^= b
	}
	for r := 0; r < hashRounds; r++ {
		c.Encrypt(h, h)
	}

	out := make([]byte, 0, 8)
	out = append(out, h[0:4]...)
	out = append(out, h[8:12]...)
	return B64Encode(out), nil
}

// B64Encode is unpadded base64url.
func B64Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// B64Decode accepts unpadded base64url as well as padded or standard
// alphabet input.
func B64Decode(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptox: base64url: %w", err)
	}
	return b, nil
}
