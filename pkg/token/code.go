package token

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CodeGenerator issues one-time confirmation codes. Callers persist only the
// hash returned by Generate.
type CodeGenerator struct {
	TTL  time.Duration
	Now  func() time.Time
	Cost int
}

func NewCodeGenerator(ttl time.Duration) *CodeGenerator {
	return &CodeGenerator{TTL: ttl, Now: time.Now, Cost: bcrypt.DefaultCost}
}

// Generate returns a fresh code and the hash to store for it.
func (g *CodeGenerator) Generate() (code, hash string, err error) {
	code = strings.ReplaceAll(uuid.NewString(), "-", "")

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), g.Cost)
	if err != nil {
		return "", "", err
	}
	return code, string(hashed), nil
}

// Verify reports whether code matches hash and was sent within the TTL.
func (g *CodeGenerator) Verify(hash string, sentAt *time.Time, code string) bool {
	if hash == "" || code == "" || sentAt == nil {
		return false
	}
	if g.TTL > 0 && g.Now().After(sentAt.Add(g.TTL)) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
