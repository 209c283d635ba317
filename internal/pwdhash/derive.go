package pwdhash

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bkgoodman/superpwdhash/internal/crypto"
	"github.com/bkgoodman/superpwdhash/internal/realm"
)

// ErrInvalidInput is returned for an empty password, an empty realm or
// params outside their valid range
var ErrInvalidInput = errors.New("invalid input")

// encoding is part of the frozen contract
var encoding = base64.RawStdEncoding

const (
	lowerAlphabet        = "abcdefghijklmnopqrstuvwxyz"
	upperOrDigitAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Derive returns the site password for password and realm.
// The realm is normalized first, so "https://Example.com/login" and
// "example.com" derive the same password. Derive never keeps a reference
// to password and zeroes every intermediate buffer before returning; the
// caller still owns (and must clear) the password slice.
func Derive(password []byte, site string, params Params) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf("%w: empty master password", ErrInvalidInput)
	}
	r := realm.Normalize(site)
	if r == "" {
		return "", fmt.Errorf("%w: empty realm", ErrInvalidInput)
	}
	if err := params.check(); err != nil {
		return "", err
	}

	seed := seedBuffer(password, r)
	defer crypto.ClearBytes(seed)

	candidate, digest := mix(seed, params.Rounds)
	defer crypto.ClearBytes(candidate)
	defer crypto.ClearBytes(digest)

	out := make([]byte, params.Length)
	defer crypto.ClearBytes(out)
	copy(out, candidate[:params.Length])

	enforce(out, digest, params)
	if !validate(out, params) {
		panic("pwdhash: policy enforcement produced a non-compliant password")
	}

	return string(out), nil
}

// seedBuffer length-prefixes both fields so distinct pairs never collide
func seedBuffer(password []byte, r string) []byte {
	seed := make([]byte, 0, 8+len(password)+len(r))
	seed = binary.BigEndian.AppendUint32(seed, uint32(len(password)))
	seed = append(seed, password...)
	seed = binary.BigEndian.AppendUint32(seed, uint32(len(r)))
	seed = append(seed, r...)
	return seed
}

// mix runs the hash-then-encode rounds. The first round hashes seed, every
// later round hashes the previous round's encoded text. Returns the last
// encoded candidate and the digest it was encoded from.
func mix(seed []byte, rounds int) (candidate, digest []byte) {
	input := seed
	for i := 0; i < rounds; i++ {
		sum := sha256.Sum256(input)

		// input is the previous candidate from round two on
		crypto.ClearBytes(candidate)
		crypto.ClearBytes(digest)

		digest = sum[:]
		candidate = make([]byte, encoding.EncodedLen(len(digest)))
		encoding.Encode(candidate, digest)
		input = candidate
	}
	return candidate, digest
}

// enforce makes out satisfy the character-class policy by overwriting at
// most two positions chosen from digest. A position that already supplies
// the only lowercase letter is never overwritten.
func enforce(out, digest []byte, p Params) {
	n := len(out)
	protected := -1

	if p.RequireLower && !containsClass(out, isLower) {
		pos := int(digest[0]) % n
		out[pos] = lowerAlphabet[int(digest[1])%len(lowerAlphabet)]
		protected = pos
	}

	if p.RequireUpperOrDigit && !containsClass(out, isUpperOrDigit) {
		if protected < 0 {
			protected = soleIndex(out, isLower)
		}
		pos := int(digest[2]) % n
		if pos == protected {
			pos = (pos + 1) % n
		}
		out[pos] = upperOrDigitAlphabet[int(digest[3])%len(upperOrDigitAlphabet)]
	}
}
