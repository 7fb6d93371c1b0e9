package echoapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/user"
)

const (
	sessionCookie = "session"
	callerKey     = "caller"
	claimsKey     = "claims"
)

var (
	errRefreshExpired = core.NewValidationError(errors.New("refresh has expired"))
	errTokenSigning   = errors.New("signing token")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64     `json:"oriat,omitempty"`
	UserID       string    `json:"id"`
	Role         perm.Role `json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email,omitempty"`
	ProfileID    string    `json:"profile_id,omitempty"`
}

func (c Claims) Caller() crud.Caller {
	return crud.Caller{
		ID:        c.UserID,
		Role:      c.Role,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		ProfileID: c.ProfileID,
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()

	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		UserID:       usr.ID,
		Role:         usr.Role,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Email:        usr.Email,
		ProfileID:    usr.ProfileID,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errTokenSigning
	}
	return ss, nil
}

func parseToken(conf *core.Config, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	return claims, nil
}

func sessionToken(ctx echo.Context) string {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := ctx.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// session resolves the caller of the request from its token. Invalid tokens leave the request anonymous.
func (s *Server) session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if token := sessionToken(ctx); token != "" {
			if claims, err := parseToken(s.conf, token); err == nil {
				ctx.Set(claimsKey, claims)
				ctx.Set(callerKey, claims.Caller())
			}
		}
		return next(ctx)
	}
}

// callerFrom returns the caller of the request; anonymous requests get the zero Caller.
func callerFrom(ctx echo.Context) crud.Caller {
	c, _ := ctx.Get(callerKey).(crud.Caller)
	return c
}

func claimsFrom(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(claimsKey).(*Claims); ok {
		return claims, nil
	}
	return nil, core.ErrUnauthenticated
}

func (s *Server) setSessionCookie(ctx echo.Context, token string, expires time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// authenticate checks the credentials, starts the session and returns its token.
func (s *Server) authenticate(ctx echo.Context, email, pwd string) (string, user.User, error) {
	usr, err := s.svcs.Users.Authenticate(reqCtx(ctx), core.CleanString(email, true /* lower */), pwd)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return "", user.User{}, core.NewValidationError(user.ErrAuthenticationFailed)
		}
		return "", user.User{}, errors.Wrap(err, "authenticating")
	}
	claims := GetUserClaims(s.conf, usr)
	token, err := GenerateToken(s.conf, claims)
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "generating token")
	}
	s.setSessionCookie(ctx, token, claims.ExpiresAt.Time)
	return token, usr, nil
}

func reqCtx(ctx echo.Context) context.Context {
	return ctx.Request().Context()
}
