package server

import (
	"quill/internal/forms"

	"github.com/gofiber/fiber/v2"
)

// Index renders the landing page with its demo content.
func (s *Server) Index(c *fiber.Ctx) error {
	return s.render(c, "index", fiber.Map{
		"FirstName":     "bob",
		"Stuff":         "This is <strong>Bold</strong> text",
		"FavoritePizza": []interface{}{"Pepperoni", "Cheese", 41},
	})
}

// NamePage renders the demo name form.
func (s *Server) NamePage(c *fiber.Ctx) error {
	return s.render(c, "name", fiber.Map{"Form": forms.NamerForm()})
}

// Name greets the submitted name and clears the form.
func (s *Server) Name(c *fiber.Ctx) error {
	form := forms.NamerForm()
	form.Bind(c)

	bind := fiber.Map{"Form": form}
	if form.Validate() {
		bind["Name"] = form.Value("name")
		form.Reset()
		_ = s.sessions.Flash(c, "Form Submitted Successfully")
	}
	return s.render(c, "name", bind)
}

// DateJSON returns a fixed JSON payload, kept as a tiny API smoke endpoint.
func (s *Server) DateJSON(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"John": "Pepperoni",
		"Mary": "Cheese",
		"Tim":  "Mushroom",
	})
}

// Admin renders the admin landing page for the admin account only.
func (s *Server) Admin(c *fiber.Ctx) error {
	if currentUserID(c) != AdminUserID {
		_ = s.sessions.Flash(c, "Must be admin")
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return s.render(c, "admin", fiber.Map{})
}
