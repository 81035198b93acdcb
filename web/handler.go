package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/flow"
	"github.com/gatehouse-dev/gatehouse/logger"
	"github.com/gatehouse-dev/gatehouse/session"
	"github.com/gatehouse-dev/gatehouse/user"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionCookie = "gatehouse_session"

const (
	ctxUser    = "user"
	ctxSession = "session"
)

type Handler struct {
	store    domain.Storage
	sessions *session.Manager
	reg      *flow.RegistrationManager
	login    *flow.LoginManager
	verify   *flow.VerificationManager
	recovery *flow.RecoveryManager
	account  *flow.AccountManager
}

func NewHandler(
	store domain.Storage,
	sessions *session.Manager,
	reg *flow.RegistrationManager,
	login *flow.LoginManager,
	verify *flow.VerificationManager,
	recovery *flow.RecoveryManager,
	account *flow.AccountManager,
) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		reg:      reg,
		login:    login,
		verify:   verify,
		recovery: recovery,
		account:  account,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Use(h.LoadUser)

	e.GET("/", h.HandleHome)
	e.GET("/register", h.HandleRegisterForm)
	e.POST("/register", h.HandleRegister)
	e.GET("/login", h.HandleLoginForm)
	e.POST("/login", h.HandleLogin)
	e.GET("/logout", h.HandleLogout)
	e.GET("/forgot-password", h.HandleForgotPasswordForm)
	e.POST("/forgot-password", h.HandleForgotPassword)
	e.GET("/forgot-password/:token", h.HandleResetPasswordForm)
	e.POST("/forgot-password/:token", h.HandleResetPassword)
	e.GET("/confirm-account", h.HandleConfirmAccountForm)
	e.POST("/confirm-account", h.HandleResendConfirmation)
	e.GET("/token/:token", h.HandleToken)
	e.GET("/delete-account/", h.HandleDeleteAccount)
}

// LoadUser resolves the session cookie into the current user for every
// request. A missing, expired or dangling session just leaves the request
// anonymous.
func (h *Handler) LoadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
			if s, err := h.sessions.Validate(ck.Value); err == nil {
				if u, err := h.store.GetUser(s.UserID); err == nil {
					c.Set(ctxUser, u)
					c.Set(ctxSession, s)
				}
			}
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *user.User {
	u, _ := c.Get(ctxUser).(*user.User)
	return u
}

func currentSession(c echo.Context) *user.Session {
	s, _ := c.Get(ctxSession).(*user.Session)
	return s
}

func (h *Handler) beginSession(c echo.Context, userID uint, remember bool) error {
	s, err := h.sessions.Create(userID, remember)
	if err != nil {
		return err
	}
	ck := &http.Cookie{Name: sessionCookie, Value: s.ID, Path: "/", HttpOnly: true}
	if remember {
		ck.Expires = s.ExpiresAt
	}
	c.SetCookie(ck)
	return nil
}

func (h *Handler) endSession(c echo.Context) {
	if s := currentSession(c); s != nil {
		if err := h.sessions.Delete(s.ID); err != nil {
			logger.Log.Warn("failed to delete session", zap.Error(err))
		}
	}
	c.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	c.Set(ctxUser, nil)
	c.Set(ctxSession, nil)
}

// page is the data every template receives.
type page struct {
	Title       string
	Flashes     []Flash
	Error       string // form-level validation message, rendered in place
	User        *user.User
	Token       string
	DeleteProof string
}

func (h *Handler) render(c echo.Context, code int, name string, p page) error {
	p.Flashes = append(takeFlashes(c), p.Flashes...)
	if p.User == nil {
		p.User = currentUser(c)
	}
	return c.Render(code, name, p)
}

func (h *Handler) HandleHome(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		addFlash(c, "You must be logged in to view that page.", "info")
		return c.Redirect(http.StatusFound, "/login")
	}
	if !u.Confirmed {
		return c.Redirect(http.StatusFound, "/confirm-account")
	}
	return h.render(c, http.StatusOK, "index.html", page{
		Title:       "Home",
		DeleteProof: h.account.DeletionProof(u),
	})
}

func (h *Handler) HandleRegisterForm(c echo.Context) error {
	if currentUser(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, http.StatusOK, "register.html", page{Title: "Register"})
}

func (h *Handler) HandleRegister(c echo.Context) error {
	if currentUser(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	if c.FormValue("password") != c.FormValue("confirm_password") {
		return h.render(c, http.StatusOK, "register.html", page{
			Title: "Register",
			Error: "Passwords must match.",
		})
	}

	u, err := h.reg.Register(c.Request().Context(), c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		var ve *flow.ValidationError
		if errors.As(err, &ve) {
			return h.render(c, http.StatusOK, "register.html", page{
				Title: "Register",
				Error: ve.Message,
			})
		}
		return err
	}

	if err := h.beginSession(c, u.ID, true); err != nil {
		return err
	}

	// Registration stands even when the confirmation email does not go out.
	if err := h.verify.Send(c.Request().Context(), u); err != nil {
		addFlash(c, "There was an error sending a confirmation email.", "danger")
	}

	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) HandleLoginForm(c echo.Context) error {
	if currentUser(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, http.StatusOK, "login.html", page{Title: "Login"})
}

func (h *Handler) HandleLogin(c echo.Context) error {
	if currentUser(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	u, err := h.login.Authenticate(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		return h.render(c, http.StatusOK, "login.html", page{
			Title: "Login",
			Error: "Login Unsuccessful. Please check your email and password",
		})
	}

	if err := h.beginSession(c, u.ID, c.FormValue("remember") != ""); err != nil {
		return err
	}

	next := c.QueryParam("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	return c.Redirect(http.StatusFound, next)
}

// HandleLogout only works for a confirmed, authenticated user; anyone else
// gets the same 404 they would get while logged out.
func (h *Handler) HandleLogout(c echo.Context) error {
	u := currentUser(c)
	if u == nil || !u.Confirmed {
		return echo.ErrNotFound
	}
	h.endSession(c)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) HandleForgotPasswordForm(c echo.Context) error {
	if currentUser(c) != nil {
		return echo.ErrNotFound
	}
	return h.render(c, http.StatusOK, "forgot_password.html", page{Title: "Forgot password"})
}

func (h *Handler) HandleForgotPassword(c echo.Context) error {
	if currentUser(c) != nil {
		return echo.ErrNotFound
	}

	// The acknowledgment is identical whether or not the account exists, and
	// a delivery failure is only logged so it cannot leak existence either.
	if err := h.recovery.Initiate(c.Request().Context(), c.FormValue("email")); err != nil {
		var de *flow.DeliveryError
		if !errors.As(err, &de) {
			return err
		}
		logger.Log.Warn("reset email delivery failed", zap.Error(err))
	}

	addFlash(c, "An email has been sent to reset your password if the user exists.", "info")
	return c.Redirect(http.StatusFound, "/forgot-password")
}

func (h *Handler) HandleResetPasswordForm(c echo.Context) error {
	if currentUser(c) != nil {
		return echo.ErrNotFound
	}

	tok := c.Param("token")
	if _, err := h.recovery.Peek(c.Request().Context(), tok); err != nil {
		return echo.ErrNotFound
	}
	return h.render(c, http.StatusOK, "change_password.html", page{
		Title: "Change your password",
		Token: tok,
	})
}

func (h *Handler) HandleResetPassword(c echo.Context) error {
	if currentUser(c) != nil {
		return echo.ErrNotFound
	}

	tok := c.Param("token")
	if _, err := h.recovery.Reset(c.Request().Context(), tok, c.FormValue("password")); err != nil {
		var ve *flow.ValidationError
		if errors.As(err, &ve) {
			return h.render(c, http.StatusOK, "change_password.html", page{
				Title: "Change your password",
				Error: ve.Message,
				Token: tok,
			})
		}
		return echo.ErrNotFound
	}

	addFlash(c, "Your password has been changed.", "success")
	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) HandleConfirmAccountForm(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return echo.ErrNotFound
	}
	if u.Confirmed {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, http.StatusOK, "confirm_account.html", page{Title: "Confirm Account"})
}

func (h *Handler) HandleResendConfirmation(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return echo.ErrNotFound
	}
	if u.Confirmed {
		return c.Redirect(http.StatusFound, "/")
	}

	if err := h.verify.Send(c.Request().Context(), u); err != nil {
		addFlash(c, "There was an error sending a confirmation email.", "danger")
		return c.Redirect(http.StatusFound, "/confirm-account")
	}

	addFlash(c, "The email has been sent to you.", "success")
	return c.Redirect(http.StatusFound, "/confirm-account")
}

func (h *Handler) HandleToken(c echo.Context) error {
	tok := c.Param("token")

	if u := currentUser(c); u != nil {
		if u.Confirmed {
			return echo.ErrNotFound
		}
		// The unconfirmed session is dropped before the token decides anything.
		h.endSession(c)
	}

	confirmed, err := h.verify.Confirm(c.Request().Context(), tok)
	switch {
	case err == nil:
	case flow.IsTokenError(err):
		return h.render(c, http.StatusForbidden, "token_expired.html", page{Title: "Token expired"})
	case errors.Is(err, flow.ErrNotFound), errors.Is(err, flow.ErrAlreadyConfirmed):
		return echo.ErrNotFound
	default:
		return err
	}

	if err := h.beginSession(c, confirmed.ID, false); err != nil {
		return err
	}

	addFlash(c, "Your email has been confirmed.", "success")
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) HandleDeleteAccount(c echo.Context) error {
	u := currentUser(c)
	if u == nil {
		return echo.ErrNotFound
	}

	if err := h.account.Delete(c.Request().Context(), u, c.QueryParam("hash")); err != nil {
		if flow.IsTokenError(err) {
			return h.render(c, http.StatusForbidden, "token_expired.html", page{Title: "Token expired"})
		}
		return err
	}

	h.endSession(c)
	addFlash(c, "Your account has been deleted.", "success")
	return c.Redirect(http.StatusFound, "/register")
}

// HTTPErrorHandler renders the dedicated error pages. Authorization
// failures surface as plain 404s; only token failures get the 403 page.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	switch code {
	case http.StatusNotFound:
		_ = c.Render(code, "404.html", page{Title: "404 - Not Found"})
	case http.StatusTooManyRequests:
		_ = c.Render(code, "429.html", page{Title: "429 - Too Many Requests"})
	case http.StatusForbidden:
		_ = c.Render(code, "token_expired.html", page{Title: "Token expired"})
	default:
		logger.Log.Error("unhandled request failure",
			zap.Error(err),
			zap.String("path", c.Request().URL.Path),
		)
		_ = c.Render(http.StatusInternalServerError, "500.html", page{Title: "500 - Internal Server Error"})
	}
}
