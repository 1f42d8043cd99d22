package server

import (
	"log/slog"

	"quill/internal/forms"
	"quill/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// LoginPage renders the login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "login", fiber.Map{"Form": forms.LoginForm()})
}

// Login checks the submitted credentials and opens an authenticated session.
// The flash message distinguishes an unknown username from a bad password.
func (s *Server) Login(c *fiber.Ctx) error {
	form := forms.LoginForm()
	form.Bind(c)

	if !form.Validate() {
		form.ClearSecrets()
		return s.render(c, "login", fiber.Map{"Form": form})
	}

	user, err := s.users.GetByUsername(c.Context(), form.Value("username"))
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "login lookup failed",
			slog.String("error", err.Error()))
		_ = s.sessions.Flash(c, storeErrorMessage)
		form.ClearSecrets()
		return s.render(c, "login", fiber.Map{"Form": form})
	}
	if user == nil {
		_ = s.sessions.Flash(c, "User Doesn't Exist. Try Again.")
		form.ClearSecrets()
		return s.render(c, "login", fiber.Map{"Form": form})
	}
	if !user.VerifyPassword(form.Value("password")) {
		_ = s.sessions.Flash(c, "Wrong Password - Try Again!")
		form.ClearSecrets()
		return s.render(c, "login", fiber.Map{"Form": form})
	}

	// Flash before Login: Login regenerates the session id, and a flash
	// written afterwards would land in a session keyed by the stale request
	// cookie. Regeneration carries existing session data forward.
	_ = s.sessions.Flash(c, "Login Successful!!")
	if err := s.sessions.Login(c, user.ID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user logged in",
		slog.Uint64("user_id", uint64(user.ID)))
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// Logout closes the authenticated session.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(c); err != nil {
		return err
	}
	_ = s.sessions.Flash(c, "You Have Been Logged Out! Thanks for visiting!")
	return c.Redirect("/login", fiber.StatusFound)
}

// TestPwPage renders the password check form.
func (s *Server) TestPwPage(c *fiber.Ctx) error {
	return s.render(c, "test_pw", fiber.Map{"Form": forms.PasswordForm()})
}

// TestPw verifies a submitted email/password pair against the stored hash and
// reports the result without opening a session.
func (s *Server) TestPw(c *fiber.Ctx) error {
	form := forms.PasswordForm()
	form.Bind(c)

	bind := fiber.Map{"Form": form}
	if !form.Validate() {
		form.ClearSecrets()
		return s.render(c, "test_pw", bind)
	}

	email := form.Value("email")
	password := form.Value("password")
	form.Reset()

	user, err := s.users.GetByEmail(c.Context(), email)
	if err != nil {
		_ = s.sessions.Flash(c, storeErrorMessage)
		return s.render(c, "test_pw", bind)
	}
	if user == nil {
		_ = s.sessions.Flash(c, "No user found with that email.")
		return s.render(c, "test_pw", bind)
	}

	bind["Checked"] = true
	bind["Email"] = email
	bind["Passed"] = user.VerifyPassword(password)
	return s.render(c, "test_pw", bind)
}
