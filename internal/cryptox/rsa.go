package cryptox

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"
)

// sidLen is the number of decrypted csid bytes that form the session id.
const sidLen = 43

var ErrMPI = errors.New("cryptox: truncated MPI")

// RSAKeyPair is a freshly generated account key pair in wire form.
type RSAKeyPair struct {
	// PublicKey is base64url(MPI(n) || MPI(e)).
	PublicKey string
	// PrivateKey is base64url(AES-ECB_mk(MPI(p) || MPI(q) || MPI(d) || MPI(u))),
	// zero-padded to the block size before encryption.
	PrivateKey string
}

// DeriveSessionID recovers the session id of a full account. privk is the
// account's private key wrapped under mk, csid the session id encrypted to
// the account's public key.
func (m *Mega) DeriveSessionID(privk string, mk []byte, csid string) (string, error) {
	wrapped, err := B64Decode(privk)
	if err != nil {
		return "", fmt.Errorf("privk: %w", err)
	}
	raw, err := m.DecryptBlock(mk, wrapped)
	if err != nil {
		return "", fmt.Errorf("privk: %w", err)
	}

	ints, _, err := readMPIs(raw, 3)
	if err != nil {
		return "", fmt.Errorf("privk: %w", err)
	}
	p, q, d := ints[0], ints[1], ints[2]
	if p.Sign() == 0 || q.Sign() == 0 || d.Sign() == 0 {
		return "", errors.New("privk: zero component")
	}

	encSID, err := B64Decode(csid)
	if err != nil {
		return "", fmt.Errorf("csid: %w", err)
	}
	c, _, err := readMPI(encSID)
	if err != nil {
		return "", fmt.Errorf("csid: %w", err)
	}

	n := new(big.Int).Mul(p, q)
	if c.Cmp(n) >= 0 {
		return "", errors.New("csid: ciphertext out of range")
	}
	plain := new(big.Int).Exp(c, d, n).Bytes()
	if len(plain) < sidLen {
		return "", fmt.Errorf("csid: decrypted %d bytes, need %d", len(plain), sidLen)
	}
	return B64Encode(plain[:sidLen]), nil
}

// GenerateRSAKeyPair creates a new account key pair with the private half
// wrapped under mk.
func (m *Mega) GenerateRSAKeyPair(mk []byte) (*RSAKeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, m.rsaBits)
	if err != nil {
		return nil, err
	}
	p, q := key.Primes[0], key.Primes[1]
	u := new(big.Int).ModInverse(p, q)
	if u == nil {
		return nil, errors.New("cryptox: p not invertible mod q")
	}

	priv := appendMPI(nil, p)
	priv = appendMPI(priv, q)
	priv = appendMPI(priv, key.D)
	priv = appendMPI(priv, u)
	if rem := len(priv) % aes.BlockSize; rem != 0 {
		priv = append(priv, make([]byte, aes.BlockSize-rem)...)
	}
	wrapped, err := m.EncryptBlock(mk, priv)
	if err != nil {
		return nil, err
	}

	pub := appendMPI(nil, key.N)
	pub = appendMPI(pub, big.NewInt(int64(key.E)))

	return &RSAKeyPair{PublicKey: B64Encode(pub), PrivateKey: B64Encode(wrapped)}, nil
}

// MPI: 16-bit big-endian bit length followed by the magnitude bytes.
func appendMPI(dst []byte, x *big.Int) []byte {
	bits := x.BitLen()
	dst = append(dst, byte(bits>>8), byte(bits))
	return append(dst, x.Bytes()...)
}

func readMPI(b []byte) (*big.Int, []byte, error) {
	if len(b) < 2 {
		return nil, nil, ErrMPI
	}
	bits := int(b[0])<<8 | int(b[1])
	n := (bits + 7) / 8
	if len(b) < 2+n {
		return nil, nil, ErrMPI
	}
	return new(big.Int).SetBytes(b[2 : 2+n]), b[2+n:], nil
}

func readMPIs(b []byte, count int) ([]*big.Int, []byte, error) {
	out := make([]*big.Int, 0, count)
	for i := 0; i < count; i++ {
		x, rest, err := readMPI(b)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, x)
		b = rest
	}
	return out, b, nil
}
