package cryptox

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	m := NewMega(0)

	k1, err := m.DeriveKey("hunter2")
	require.NoError(t, err)
	k2, err := m.DeriveKey("hunter2")
	require.NoError(t, err)
	k3, err := m.DeriveKey("hunter3")
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestDeriveKey_KnownAnswer(t *testing.T) {
	tests := []struct {
		password string
		expected string
	}{
		{password: "hunter2", expected: "15666c2c80694324a8f7f95a1d085629"},
		{password: "correct horse battery staple", expected: "57d978ef82e99ea50ab00045e8614d7b"},
	}

	m := NewMega(0)
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			k, err := m.DeriveKey(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hex.EncodeToString(k))
		})
	}
}

func TestUsernameHash_KnownAnswer(t *testing.T) {
	m := NewMega(0)
	pk, err := m.DeriveKey("hunter2")
	require.NoError(t, err)

	h, err := m.UsernameHash(pk, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "e8cQKbJGG0M", h)
}

func TestDeriveKeyV2_KnownAnswer(t *testing.T) {
	salt := make([]byte, 32)
	for i := range salt {
		salt[i] = byte(i)
	}

	pk, authKey := NewMega(0).DeriveKeyV2("hunter2", salt)

	assert.Equal(t, "a0ace7a032490b488236b542e885bf80", hex.EncodeToString(pk))
	assert.Equal(t, "30MHLEivG4BoV04SolRdrw", authKey)
}

func TestDeriveKey_EmptyPasswordKeepsInitialState(t *testing.T) {
	k, err := NewMega(0).DeriveKey("")
	require.NoError(t, err)
	assert.Equal(t, pkeyInit, k)
}

func TestDeriveKey_LongPasswordUsesEveryChunk(t *testing.T) {
	m := NewMega(0)
	a, err := m.DeriveKey("0123456789abcdef")
	require.NoError(t, err)
	b, err := m.DeriveKey("0123456789abcdefX")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveKeyV2(t *testing.T) {
	m := NewMega(0)
	salt := bytes.Repeat([]byte{0xab}, 32)

	pk1, auth1 := m.DeriveKeyV2("hunter2", salt)
	pk2, auth2 := m.DeriveKeyV2("hunter2", salt)
	pk3, _ := m.DeriveKeyV2("hunter2", bytes.Repeat([]byte{0xcd}, 32))

	assert.Len(t, pk1, KeySize)
	assert.Equal(t, pk1, pk2)
	assert.Equal(t, auth1, auth2)
	assert.NotEqual(t, pk1, pk3)

	raw, err := B64Decode(auth1)
	require.NoError(t, err)
	assert.Len(t, raw, KeySize)
}

func TestEncryptDecryptBlock(t *testing.T) {
	m := NewMega(0)
	key := m.RandomKey()
	plain := m.RandomBytes(48)

	enc, err := m.EncryptBlock(key, plain)
	require.NoError(t, err)
	assert.Len(t, enc, 48)
	assert.NotEqual(t, plain, enc)

	// ECB: identical blocks encrypt identically
	same, err := m.EncryptBlock(key, plain[:16])
	require.NoError(t, err)
	assert.Equal(t, enc[:16], same)

	dec, err := m.DecryptBlock(key, enc)
	require.NoError(t, err)
	assert.Equal(t, plain, dec)
}

func TestEncryptBlock_RejectsPartialBlock(t *testing.T) {
	m := NewMega(0)
	_, err := m.EncryptBlock(m.RandomKey(), make([]byte, 17))
	assert.ErrorIs(t, err, ErrBlockSize)

	_, err = m.DecryptBlock(m.RandomKey(), make([]byte, 5))
	assert.ErrorIs(t, err, ErrBlockSize)

	_, err = m.EncryptBlock([]byte("short"), make([]byte, 16))
	assert.Error(t, err)
}

func TestUsernameHash(t *testing.T) {
	m := NewMega(0)
	key := bytes.Repeat([]byte{1}, KeySize)

	h1, err := m.UsernameHash(key, "user@example.com")
	require.NoError(t, err)
	h2, err := m.UsernameHash(key, "user@example.com")
	require.NoError(t, err)
	h3, err := m.UsernameHash(key, "other@example.com")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	raw, err := B64Decode(h1)
	require.NoError(t, err)
	assert.Len(t, raw, 8)
}

func TestB64(t *testing.T) {
	in := []byte{0xfb, 0xff, 0xfe, 0x00, 0x01}
	enc := B64Encode(in)
	assert.Equal(t, "-__-AAE", enc)

	for _, s := range []string{"-__-AAE", "+//+AAE", "-__-AAE="} {
		got, err := B64Decode(s)
		require.NoError(t, err, s)
		assert.Equal(t, in, got, s)
	}

	_, err := B64Decode("!!")
	assert.Error(t, err)
}

func TestMPI_RoundTrip(t *testing.T) {
	a := big.NewInt(0x010203)
	b := new(big.Int).Lsh(big.NewInt(1), 300)

	buf := appendMPI(appendMPI(nil, a), b)
	ints, rest, err := readMPIs(buf, 2)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, 0, a.Cmp(ints[0]))
	assert.Equal(t, 0, b.Cmp(ints[1]))

	_, _, err = readMPI(buf[:3])
	assert.ErrorIs(t, err, ErrMPI)
	_, _, err = readMPI(nil)
	assert.ErrorIs(t, err, ErrMPI)
}

// encryptSID plays the server: it encrypts sidRaw (plus filler) to the
// public key in pubk and returns the csid.
func encryptSID(t *testing.T, pubk string, sidRaw []byte) string {
	t.Helper()
	pub, err := B64Decode(pubk)
	require.NoError(t, err)
	ints, _, err := readMPIs(pub, 2)
	require.NoError(t, err)
	n, e := ints[0], ints[1]

	plain := append(append([]byte(nil), sidRaw...), bytes.Repeat([]byte{0x42}, 20)...)
	c := new(big.Int).Exp(new(big.Int).SetBytes(plain), e, n)
	return B64Encode(appendMPI(nil, c))
}

func TestGenerateRSAKeyPair_DeriveSessionID(t *testing.T) {
	m := NewMega(1024)
	mk := m.RandomKey()

	kp, err := m.GenerateRSAKeyPair(mk)
	require.NoError(t, err)
	require.NotEmpty(t, kp.PublicKey)
	require.NotEmpty(t, kp.PrivateKey)

	wrapped, err := B64Decode(kp.PrivateKey)
	require.NoError(t, err)
	assert.Zero(t, len(wrapped)%16)

	sidRaw := m.RandomBytes(sidLen)
	sidRaw[0] = 0x7f

	sid, err := m.DeriveSessionID(kp.PrivateKey, mk, encryptSID(t, kp.PublicKey, sidRaw))
	require.NoError(t, err)
	assert.Equal(t, B64Encode(sidRaw), sid)
}

func TestDeriveSessionID_Failures(t *testing.T) {
	m := NewMega(1024)
	mk := m.RandomKey()
	kp, err := m.GenerateRSAKeyPair(mk)
	require.NoError(t, err)
	csid := encryptSID(t, kp.PublicKey, bytes.Repeat([]byte{0x11}, sidLen))

	wrapped, err := B64Decode(kp.PrivateKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		privk string
		csid  string
	}{
		{name: "privk not base64", privk: "***", csid: csid},
		{name: "privk partial block", privk: B64Encode(wrapped[:20]), csid: csid},
		{name: "privk truncated", privk: B64Encode(wrapped[:16]), csid: csid},
		{name: "csid not base64", privk: kp.PrivateKey, csid: "***"},
		{name: "csid empty", privk: kp.PrivateKey, csid: ""},
		{name: "csid too short plaintext", privk: kp.PrivateKey, csid: B64Encode(appendMPI(nil, big.NewInt(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.DeriveSessionID(tt.privk, mk, tt.csid)
			assert.Error(t, err)
		})
	}
}
