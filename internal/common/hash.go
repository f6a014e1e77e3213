package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex returns the SHA-256 digest of the input encoded as lowercase hex.
// Redis keys derived from client input go through it so they have a fixed
// length and charset.
func Sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// HMACSHA256Hex returns hex(HMAC-SHA256(secret, msg)) in lowercase.
func HMACSHA256Hex(secret string, msg []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

// EqualHex compares two hex digests in constant time. Case and length
// differences never match.
func EqualHex(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}
