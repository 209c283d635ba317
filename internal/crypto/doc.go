// Package crypto holds the secret-handling primitives of superpwdhash.
//
// Master password hygiene:
//   - Secret owns the master password buffer; defer Destroy right after
//     acquiring it so the bytes are zeroed on every exit path
//   - Use ClearBytes() to zero any other sensitive slice after use
//
// The master password verifier uses:
//   - PBKDF2-HMAC-SHA256, 32-byte random salt, 210,000 iterations
//   - AES-256-GCM with a 12-byte random nonce over a fixed check value
//
// The verifier only tells a typo from the right password. It is never an
// input to site password derivation.
package crypto
