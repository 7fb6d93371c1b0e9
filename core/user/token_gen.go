package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	resetSalt = []byte("lmsadmin/password-reset")
	nowFunc   = time.Now // mockable

	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID returns the user ID as carried in password reset links.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// resetEpoch is day 0 of reset tokens.
var resetEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func dayOf(t time.Time) int64 {
	return int64(t.UTC().Sub(resetEpoch) / (24 * time.Hour))
}

// tokenGenerator issues password reset tokens of the form "<day, base 36>-<signature>".
// A token dies when it expires or when the account state it was signed over changes:
// password, last login, role or activation.
type tokenGenerator struct {
	secret  string
	timeout time.Duration
}

func (tg tokenGenerator) makeToken(usr User) (string, error) {
	return tg.tokenAt(usr, dayOf(nowFunc())), nil
}

func (tg tokenGenerator) tokenAt(usr User, day int64) string {
	return strconv.FormatInt(day, 36) + "-" + tg.sign(usr, day)
}

func (tg tokenGenerator) verifyToken(usr User, token string) error {
	dayStr, sig, ok := strings.Cut(token, "-")
	if !ok || dayStr == "" || sig == "" {
		return errInvalidToken
	}
	day, err := strconv.ParseInt(dayStr, 36, 64)
	if err != nil || day < 0 {
		return errInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(tg.sign(usr, day))) {
		return errInvalidToken
	}
	if dayOf(nowFunc())-day > int64(tg.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (tg tokenGenerator) sign(usr User, day int64) string {
	key := sha256.Sum256(append(append([]byte{}, resetSalt...), tg.secret...))
	h := hmac.New(sha256.New, key[:])
	for _, part := range [][]byte{
		[]byte(usr.ID),
		[]byte(usr.Email),
		[]byte(usr.Role),
		[]byte(strconv.FormatBool(usr.IsActive)),
		usr.PasswordHash,
		[]byte(strconv.FormatInt(usr.LastLogin.Unix(), 10)),
		[]byte(strconv.FormatInt(day, 10)),
	} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
