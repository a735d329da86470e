package utils

import (
	"crypto/rand"
	"math/big"
)

// Karışıklık yaratan karakterler (0/O, 1/I/L) çıkarıldı
const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const EventCodeLength = 8

// GenerateRandomString returns a random string of length over the event code alphabet.
func GenerateRandomString(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = codeCharset[n.Int64()]
	}
	return string(b)
}

func GenerateEventCode() string {
	return GenerateRandomString(EventCodeLength)
}
