package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	emailCodeTTL      = 5 * time.Minute
	activationCodeTTL = 30 * time.Minute

	emailCodePrefix      = "email_code:"
	activationCodePrefix = "active_"
)

// Code store failure modes.
var (
	ErrCodeMismatch     = errors.New("verification code is wrong or expired")
	ErrStoreUnavailable = errors.New("verification code store unavailable")
)

// CodeStore keeps short-lived email verification and activation codes in
// Redis. Codes expire on their own; consuming a code deletes it.
type CodeStore struct {
	rdb *redis.Client
}

// NewCodeStore returns a store backed by the given Redis client.
func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{rdb: rdb}
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a constant-free time-derived value.
		n = big.NewInt(time.Now().UnixNano() % 1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// SetEmailCode stores a registration verification code for the email with
// a 5 minute lifetime.
func (s *CodeStore) SetEmailCode(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	return s.rdb.Set(ctx, emailCodePrefix+email, code, emailCodeTTL).Err()
}

// CheckEmailCode verifies the registration code for the email. The code is
// left in place until it expires, matching the original flow where a failed
// registration may be retried with the same code.
func (s *CodeStore) CheckEmailCode(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	stored, err := s.rdb.Get(ctx, emailCodePrefix+email).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}
	return nil
}

// SetActivationCode stores an account activation code for the email with a
// 30 minute lifetime.
func (s *CodeStore) SetActivationCode(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	return s.rdb.Set(ctx, activationCodePrefix+email, code, activationCodeTTL).Err()
}

// ConsumeActivationCode verifies the activation code for the email and
// deletes it so it cannot be replayed.
func (s *CodeStore) ConsumeActivationCode(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return ErrStoreUnavailable
	}
	stored, err := s.rdb.Get(ctx, activationCodePrefix+email).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}
	return s.rdb.Del(ctx, activationCodePrefix+email).Err()
}

// EncodeActivationKey packs email and code into the opaque key embedded in
// activation links: base64(email + 6-digit code).
func EncodeActivationKey(email, code string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + code))
}

// DecodeActivationKey splits an activation key back into email and code.
func DecodeActivationKey(key string) (email, code string, err error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", "", fmt.Errorf("malformed activation key: %w", err)
	}
	decoded := string(raw)
	if len(decoded) <= 6 {
		return "", "", errors.New("malformed activation key")
	}
	return decoded[:len(decoded)-6], decoded[len(decoded)-6:], nil
}
