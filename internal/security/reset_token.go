package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

const (
	resetTokenBytes = 20
	ResetTokenTTL   = 10 * time.Minute
)

// ResetToken is the result of issuing a password reset token. Plain goes to the
// requester out of band; only Hash and ExpiresAt are stored.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

func IssueResetToken(now time.Time) (ResetToken, error) {
	b := make([]byte, resetTokenBytes)

	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, err
	}

	plain := hex.EncodeToString(b)

	return ResetToken{
		Plain:     plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

// HashResetToken is deterministic so the stored hash can be looked up directly.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// MatchResetToken is true only for the issued plaintext and only before expiry.
func MatchResetToken(presented, storedHash string, storedExpiry, now time.Time) bool {
	if presented == "" || storedHash == "" {
		return false
	}

	if !now.Before(storedExpiry) {
		return false
	}

	got := HashResetToken(presented)

	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}
