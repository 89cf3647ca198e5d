package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// passwordLetters deliberately includes punctuation so that generated
// placeholder secrets satisfy common password policies.
const passwordLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-&@.:/%$*#!"

// MakeRandPassword generates an unguessable placeholder password of the given
// length. It is used for accounts whose real credential is a federated token,
// never a password.
func MakeRandPassword(length int) (string, error) {
	max := big.NewInt(int64(len(passwordLetters)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordLetters[n.Int64()]
	}
	return string(b), nil
}
