package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/user"
)

const msgPasswordResetSent = "If the email address supplied is associated with an active account on this system, " +
	"an email will arrive in your inbox shortly with instructions to reset your password."

type (
	LoginRequest struct {
		Email    string `json:"email" form:"email" validate:"required,email"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" form:"email" validate:"required,email"`
	}

	// Me is the identity of the current session and what it may do.
	Me struct {
		User         user.User         `json:"user"`
		Capabilities perm.Capabilities `json:"capabilities"`
	}
)

type authApi struct {
	*Server
}

func registerAuthAPI(g *echo.Group, s *Server) {
	api := authApi{s}

	// TODO: rate limit `/login`, `/password-reset` & `/password-reset-confirm`
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
	g.POST("/password-reset", api.resetPassword)
	g.POST("/password-reset-confirm", api.confirmPasswordReset)

	g.GET("/me", api.me)
	g.POST("/token-refresh", api.refreshToken)
}

func (api authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := api.validator.Struct(data); err != nil {
		return err
	}

	token, usr, err := api.authenticate(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	return api.ok(ctx, "logged in successfully", LoginResponse{Token: token, User: usr})
}

func (api authApi) logout(ctx echo.Context) error {
	api.clearSessionCookie(ctx)
	return api.ok(ctx, "logged out successfully", nil)
}

func (api authApi) me(ctx echo.Context) error {
	c := callerFrom(ctx)
	if !c.IsAuthenticated() {
		return core.ErrUnauthenticated
	}
	usr, err := api.svcs.Users.GetByID(reqCtx(ctx), c.ID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.ErrUnauthenticated
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return api.ok(ctx, "", Me{User: usr, Capabilities: usr.Caller().Caps()})
}

func (api authApi) refreshToken(ctx echo.Context) error {
	claims, err := claimsFrom(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svcs.Users.GetByID(reqCtx(ctx), claims.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.ErrUnauthenticated
		}
		return errors.Wrap(err, "finding user by ID")
	}

	// check if user is still active
	if !usr.IsActive {
		return user.ErrAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	newClaims := GetUserClaims(api.conf, usr, claims.OrigIssuedAt)
	token, err := GenerateToken(api.conf, newClaims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.setSessionCookie(ctx, token, newClaims.ExpiresAt.Time)
	return api.ok(ctx, "", LoginResponse{Token: token, User: usr})
}

func (api authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := api.validator.Struct(data); err != nil {
		return err
	}

	if err := api.svcs.Users.RequestPasswordReset(reqCtx(ctx), core.CleanString(data.Email, true)); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return api.ok(ctx, msgPasswordResetSent, nil)
}

func (api authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := api.svcs.Users.ResetPassword(reqCtx(ctx), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return api.ok(ctx, "password has been reset with the new password", nil)
}

// ok answers a successful envelope and counts it.
func (s *Server) ok(ctx echo.Context, msg string, data interface{}) error {
	s.metrics.observe(ctx, true)
	return ctx.JSON(http.StatusOK, crud.OK(msg, data))
}
