package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
	"github.com/trezcool/lmsadmin/core/user"
)

const msgServerError = "something went wrong, please try again later"

// failure is what an error handler answers: the HTTP code and the envelope.
type failure struct {
	code int
	env  crud.Envelope
}

// classify maps an error onto the envelope the client sees. ok is false for server faults.
func classify(err error, validate *core.Validator) (f failure, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		msg, _ := origErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(origErr.Code)
		}
		return failure{code: origErr.Code, env: crud.Fail(strings.ToLower(msg))}, true
	case validator.ValidationErrors:
		vErr := validate.Convert(origErr)
		return failure{code: http.StatusOK, env: crud.Fail(vErr.Error(), vErr.Fields)}, true
	case *core.ValidationError:
		if origErr.Fields != nil {
			return failure{code: http.StatusOK, env: crud.Fail(origErr.Error(), origErr.Fields)}, true
		}
		return failure{code: http.StatusOK, env: crud.Fail(origErr.Error())}, true
	case *core.NotFoundError, *core.ConflictError:
		return failure{code: http.StatusOK, env: crud.Fail(origErr.Error())}, true
	}

	switch cause := errors.Cause(err); cause {
	case core.ErrUnauthenticated:
		return failure{code: http.StatusUnauthorized, env: crud.Fail(cause.Error())}, true
	case core.ErrUnauthorized, user.ErrAuthenticationFailed, user.ErrAccountDeactivated, user.ErrNotFound:
		return failure{code: http.StatusOK, env: crud.Fail(cause.Error())}, true
	}
	return failure{code: http.StatusInternalServerError, env: crud.Fail(msgServerError)}, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that answers every error with a failure envelope.
// Pages redirect anonymous visitors to the login page instead.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	logger core.Logger,
	validate *core.Validator,
	m *metrics,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		f, ok := classify(err, validate)
		if !ok { // any other error is a server error
			c := callerFrom(ctx)
			logger.Error(msgServerError, errors.Wrap(err, ctx.Request().Method+" "+ctx.Path()), c.ID, c.Email)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				f.env.Message = err.Error()
			}
		}
		m.observe(ctx, false)

		if ctx.Response().Committed {
			return
		}
		if isPage(ctx) {
			err = renderFailure(ctx, f)
		} else if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(f.code)
		} else {
			err = ctx.JSON(f.code, f.env)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// isPage reports whether the request is for an HTML page rather than the JSON endpoints.
func isPage(ctx echo.Context) bool {
	p := ctx.Request().URL.Path
	return !(strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/auth/") ||
		strings.HasPrefix(p, "/uploads/") || p == "/metrics")
}
