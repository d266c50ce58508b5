package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const codeSuffixLength = 9

// GenerateTicketCode returns a code like TKT-1718900000000-8F3K2L9QX.
func GenerateTicketCode(now time.Time) (string, error) {
	return generateCode("TKT", now)
}

// GenerateOrderNumber returns a code like ORD-1718900000000-Q2W9E8R7T.
func GenerateOrderNumber(now time.Time) (string, error) {
	return generateCode("ORD", now)
}

func generateCode(prefix string, now time.Time) (string, error) {
	suffix, err := RandomString(codeSuffixLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix), nil
}

// RandomString draws n characters uniformly from [0-9A-Z].
func RandomString(n int) (string, error) {
	max := big.NewInt(int64(len(codeCharset)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random code: %w", err)
		}
		out[i] = codeCharset[idx.Int64()]
	}
	return string(out), nil
}
