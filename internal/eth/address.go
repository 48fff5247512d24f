package eth

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("invalid ethereum address")

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsAddress reports whether s looks like a 20-byte hex address with 0x prefix.
// Checksum casing is not enforced; wallets and indexers disagree on it.
func IsAddress(s string) bool {
	return addressRe.MatchString(s)
}

// Normalize returns the lower-cased form used as the identity key.
// Two spellings of the same address always normalize to the same key.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Checksum returns the EIP-55 mixed-case form for display.
// Returns ErrInvalidAddress if s is not a hex address.
func Checksum(s string) (string, error) {
	if !IsAddress(strings.TrimSpace(s)) {
		return "", ErrInvalidAddress
	}
	addr := Normalize(s)[2:]

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(addr))
	hash := h.Sum(nil)

	out := make([]byte, len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if c >= 'a' && c <= 'f' {
			// Uppercase when the corresponding hash nibble is >= 8.
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 32
			}
		}
		out[i] = c
	}
	return "0x" + string(out), nil
}
