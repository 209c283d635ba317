// Package pwdhash derives per-site passwords from a master password.
//
// The algorithm is frozen. Changing any of the following changes every
// password a user has ever derived:
//   - Seed: be32(len(password)) || password || be32(len(realm)) || realm
//   - Digest: SHA-256
//   - Encoding: unpadded standard base64 (A-Z a-z 0-9 + /)
//   - Rounds: each round hashes the previous round's encoded text
//   - Truncation: the first Length characters of the last round
//   - Policy: fixed substitutions keyed by the last round's digest bytes
//
// Derive, Validate and the profiles are safe for concurrent use.
package pwdhash
