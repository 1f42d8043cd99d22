package server

import (
	"log/slog"

	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddUserPage renders the registration form with the list of existing users.
func (s *Server) AddUserPage(c *fiber.Ctx) error {
	users, err := s.users.ListByDateAdded(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "add_user", fiber.Map{
		"Form":  forms.UserForm(),
		"Users": users,
	})
}

// AddUser registers a new account. Registration is refused when the submitted
// email already belongs to a user.
func (s *Server) AddUser(c *fiber.Ctx) error {
	form := forms.UserForm()
	form.Bind(c)

	name := ""
	if form.Validate() {
		existing, err := s.users.GetByEmail(c.Context(), form.Value("email"))
		switch {
		case err != nil:
			_ = s.sessions.Flash(c, storeErrorMessage)
		case existing != nil:
			_ = s.sessions.Flash(c, "User Already Exists")
		default:
			user := &models.User{
				Username:      form.Value("username"),
				Name:          form.Value("name"),
				Email:         form.Value("email"),
				FavoriteColor: form.Value("favorite_color"),
				AboutAuthor:   form.Value("about_author"),
			}
			if err := user.SetPassword(form.Value("password")); err != nil {
				return err
			}
			if err := s.users.Create(c.Context(), user); err != nil {
				if models.HasCode(err, models.CodeDuplicateUser) {
					_ = s.sessions.Flash(c, "User Already Exists")
				} else {
					_ = s.sessions.Flash(c, storeErrorMessage)
				}
			} else {
				_ = s.sessions.Flash(c, "User Added Successfully")
				middleware.Logger.InfoContext(c.UserContext(), "user registered",
					slog.Uint64("user_id", uint64(user.ID)))
				form.Reset()
			}
		}
		name = form.Value("name")
	} else {
		form.ClearSecrets()
	}

	users, err := s.users.ListByDateAdded(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "add_user", fiber.Map{
		"Form":  form,
		"Users": users,
		"Name":  name,
	})
}

// Dashboard renders the current user's profile for editing.
func (s *Server) Dashboard(c *fiber.Ctx) error {
	user, err := s.users.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return s.render(c, "dashboard", fiber.Map{"User": user})
}

// UpdateDashboard applies the submitted profile fields to the current user.
func (s *Server) UpdateDashboard(c *fiber.Ctx) error {
	return s.updateUser(c, currentUserID(c), "dashboard")
}

// UpdateUserPage renders the edit form for the user named in the path.
func (s *Server) UpdateUserPage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return s.render(c, "update", fiber.Map{"User": user})
}

// UpdateUser applies the submitted profile fields to the user named in the path.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.updateUser(c, id, "update")
}

// updateUser binds the profile fields onto the stored user and saves it.
// Submitted values are retained on the page whether or not the save succeeds.
// The password is never touched here.
func (s *Server) updateUser(c *fiber.Ctx, id uint, view string) error {
	user, err := s.users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	user.Name = c.FormValue("name")
	user.Email = c.FormValue("email")
	user.FavoriteColor = c.FormValue("favorite_color")
	user.Username = c.FormValue("username")
	user.AboutAuthor = c.FormValue("about_author")

	if err := s.users.Update(c.Context(), user); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "user update failed",
			slog.Uint64("user_id", uint64(id)), slog.String("error", err.Error()))
		_ = s.sessions.Flash(c, storeErrorMessage)
	} else {
		_ = s.sessions.Flash(c, "User Updated Successfully!")
	}
	return s.render(c, view, fiber.Map{"User": user})
}

// DeleteUser removes an account. Only self-service deletion is allowed.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if id != currentUserID(c) {
		_ = s.sessions.Flash(c, "Not allowed to delete user")
		return c.Redirect("/dashboard", fiber.StatusFound)
	}

	if _, err := s.users.GetByID(c.Context(), id); err != nil {
		return err
	}

	if err := s.users.Delete(c.Context(), id); err != nil {
		_ = s.sessions.Flash(c, storeErrorMessage)
	} else {
		_ = s.sessions.Flash(c, "User Deleted Successfully!")
		middleware.Logger.InfoContext(c.UserContext(), "user deleted",
			slog.Uint64("user_id", uint64(id)))
	}

	users, err := s.users.ListByDateAdded(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "add_user", fiber.Map{
		"Form":  forms.UserForm(),
		"Users": users,
	})
}

// UserGreeting renders a greeting page for the name in the path.
func (s *Server) UserGreeting(c *fiber.Ctx) error {
	return s.render(c, "user", fiber.Map{"Name": c.Params("name")})
}
