package server

import (
	"log/slog"
	"strconv"

	"quill/internal/forms"
	"quill/internal/middleware"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListPosts renders every post, oldest first.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.posts.ListByDatePosted(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "posts", fiber.Map{"Posts": posts})
}

// ShowPost renders a single post.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return s.render(c, "post", fiber.Map{"Post": post})
}

// AddPostPage renders the post composition form.
func (s *Server) AddPostPage(c *fiber.Ctx) error {
	return s.render(c, "add_post", fiber.Map{"Form": forms.PostForm()})
}

// AddPost creates a post authored by the current session user.
func (s *Server) AddPost(c *fiber.Ctx) error {
	form := forms.PostForm()
	form.Bind(c)

	if form.Validate() {
		post := &models.Post{
			Title:    form.Value("title"),
			Content:  form.Value("content"),
			Slug:     form.Value("slug"),
			PosterID: currentUserID(c),
		}
		if err := s.posts.Create(c.Context(), post); err != nil {
			_ = s.sessions.Flash(c, storeErrorMessage)
		} else {
			_ = s.sessions.Flash(c, "blog Post Submitted Successfully")
			middleware.Logger.InfoContext(c.UserContext(), "post created",
				slog.Uint64("post_id", uint64(post.ID)))
			form.Reset()
		}
	}

	return s.render(c, "add_post", fiber.Map{"Form": form})
}

// EditPostPage renders the edit form, only for the post's author.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	if currentUserID(c) != post.PosterID {
		return s.rejectNonAuthor(c)
	}

	form := forms.PostForm()
	form.Set("title", post.Title)
	form.Set("slug", post.Slug)
	form.Set("content", post.Content)
	return s.render(c, "edit_post", fiber.Map{"Form": form, "PostID": post.ID})
}

// EditPost updates a post's title, slug, and content, only for its author.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	if currentUserID(c) != post.PosterID {
		return s.rejectNonAuthor(c)
	}

	form := forms.PostForm()
	form.Bind(c)
	if !form.Validate() {
		return s.render(c, "edit_post", fiber.Map{"Form": form, "PostID": post.ID})
	}

	post.Title = form.Value("title")
	post.Slug = form.Value("slug")
	post.Content = form.Value("content")
	if err := s.posts.Update(c.Context(), post); err != nil {
		_ = s.sessions.Flash(c, storeErrorMessage)
		return s.render(c, "edit_post", fiber.Map{"Form": form, "PostID": post.ID})
	}

	_ = s.sessions.Flash(c, "Post Has Been Updated")
	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}

// rejectNonAuthor flashes the authorization notice and falls back to the
// public post list.
func (s *Server) rejectNonAuthor(c *fiber.Ctx) error {
	_ = s.sessions.Flash(c, "You aren't authorized to edit this post")
	posts, err := s.posts.ListByDatePosted(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "posts", fiber.Map{"Posts": posts})
}

// DeletePost removes a post and re-renders the post list. The lookup
// deliberately uses the session user's id as the post id, ignoring the path
// parameter, mirroring the behavior this route has always had.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id"); err != nil {
		return nil
	}

	post, err := s.posts.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return err
	}

	if err := s.posts.Delete(c.Context(), post.ID); err != nil {
		_ = s.sessions.Flash(c, "Whoops! Problem Deleting Post")
	} else {
		_ = s.sessions.Flash(c, "Blog Post Was Deleted")
		middleware.Logger.InfoContext(c.UserContext(), "post deleted",
			slog.Uint64("post_id", uint64(post.ID)))
	}

	posts, err := s.posts.ListByDatePosted(c.Context())
	if err != nil {
		return err
	}
	return s.render(c, "posts", fiber.Map{"Posts": posts})
}

// Search renders the posts whose content contains the submitted term,
// ordered by title.
func (s *Server) Search(c *fiber.Ctx) error {
	form := forms.SearchForm()
	form.Bind(c)

	if !form.Validate() {
		return s.render(c, "search", fiber.Map{"Form": form})
	}

	searched := form.Value("searched")
	posts, err := s.posts.SearchContent(c.Context(), searched)
	if err != nil {
		return err
	}
	return s.render(c, "search", fiber.Map{
		"Form":     form,
		"Searched": searched,
		"Posts":    posts,
	})
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10)
}
