// Package auth — password hashing utilities.
//
// WHY ARGON2ID?
// Argon2 won the Password Hashing Competition (2015) and argon2id is the
// variant recommended for password storage. Unlike fast hashes (MD5, SHA-256)
// it is deliberately expensive, and unlike bcrypt it is *memory-hard*: each
// hash needs tens of megabytes of RAM, which cripples GPU/ASIC cracking rigs
// that have lots of cores but little memory per core.
//
// NEVER store passwords in plain text or with fast hashes.
//
// The encoded hash is self-contained, in the standard PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 key>
//
// Salt and all cost parameters are embedded in the output, so verification
// needs no extra columns and old hashes keep working after the defaults are
// raised.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PHC strings use unpadded standard base64 for the salt and key segments.
var b64 = base64.RawStdEncoding

// Default argon2id parameters.
//
// These follow the argon2 package's own recommendation for interactive
// logins: 64 MiB of memory, 1 pass, parallelism 4 (~40-50ms per hash on a
// modern server).
//
// COST TUNING RULE OF THUMB:
// Raise m= until hashing takes as long as you can tolerate at login time.
// Too low → cheap to crack. Too high → the server spends all its CPU and RAM
// on hashing during a burst of sign-ins.
const (
	defaultMemory  = 64 * 1024 // KiB → 64 MiB
	defaultTime    = 1
	defaultThreads = 4
	saltLength     = 16
	keyLength      = 32
)

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordService provides argon2id hashing and verification.
//
// It's a struct (not free functions) so that the cost parameters can be
// injected in tests — weak parameters (see NewPasswordServiceForTest) make
// tests run much faster without compromising the logic being tested.
type PasswordService struct {
	memory  uint32
	time    uint32
	threads uint8
}

// NewPasswordService creates a PasswordService with the default parameters.
func NewPasswordService() *PasswordService {
	return &PasswordService{
		memory:  defaultMemory,
		time:    defaultTime,
		threads: defaultThreads,
	}
}

// NewPasswordServiceForTest creates a PasswordService with deliberately weak
// parameters (1 MiB, 1 pass). Use in tests in other packages to avoid the
// 64 MiB allocation per hashing operation.
//
// Do NOT use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{
		memory:  1024,
		time:    1,
		threads: 1,
	}
}

// Hash hashes the given plaintext password with argon2id.
//
// A fresh random salt is generated per call, so two users with the same
// password get different hashes. Store the returned string directly in the
// database — Verify knows how to decode it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, keyLength)

	return encodeHash(p.memory, p.time, p.threads, salt, key), nil
}

// Verify checks whether a plaintext password matches a stored argon2id hash.
//
// Returns nil if they match, ErrPasswordMismatch if they don't, and some
// other error if the stored hash is malformed.
//
// TIMING SAFETY:
// The derived keys are compared with subtle.ConstantTimeCompare, so the time
// taken does not depend on how many leading bytes match. Never replace this
// with bytes.Equal or a hand-written loop — an early-exit comparison leaks
// information through response timing.
func (p *PasswordService) Verify(hash, plaintext string) error {
	memory, time, threads, salt, want, err := decodeHash(hash)
	if err != nil {
		return err
	}

	// Re-derive with the parameters embedded in the stored hash, not the
	// service defaults — old hashes stay verifiable after a cost bump.
	got := argon2.IDKey([]byte(plaintext), salt, time, memory, threads, uint32(len(want)))

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether a stored hash was produced with parameters
// weaker than the service's current ones. Callers can rehash on the next
// successful login.
func (p *PasswordService) NeedsRehash(hash string) bool {
	memory, time, threads, _, _, err := decodeHash(hash)
	if err != nil {
		return true
	}
	return memory < p.memory || time < p.time || threads < p.threads
}

func encodeHash(memory, time uint32, threads uint8, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memory, time, threads,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	)
}

func decodeHash(hash string) (memory, time uint32, threads uint8, salt, key []byte, err error) {
	// Expected: ["", "argon2id", "v=19", "m=...,t=...,p=...", salt, key]
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: parsing hash version: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: parsing hash parameters: %w", err)
	}

	salt, err = b64.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: decoding hash salt: %w", err)
	}
	key, err = b64.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("auth: decoding hash key: %w", err)
	}

	return memory, time, threads, salt, key, nil
}
