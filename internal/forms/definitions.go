package forms

// The form declarations below mirror the application's use cases one-to-one.

// LoginForm authenticates an existing user.
func LoginForm() *Form {
	return New(
		Text("username", "Username", Required()),
		Password("password", "Password", Required()),
	)
}

// UserForm registers a new user. The two password fields must match.
func UserForm() *Form {
	return New(
		Text("username", "Username", Required(), MaxLength(20)),
		Text("name", "Name", Required()),
		Text("email", "Email", Required()),
		Text("favorite_color", "Favorite Color"),
		Text("about_author", "About Author"),
		Password("password", "Password", Required(), EqualTo("password2", "Passwords must match")),
		Password("password2", "Confirm Password"),
	)
}

// PostForm creates or edits a blog post.
func PostForm() *Form {
	return New(
		Text("title", "Title", Required()),
		Text("content", "Content", Required()),
		Text("slug", "Slug", Required()),
	)
}

// NamerForm is the demo form on /name.
func NamerForm() *Form {
	return New(
		Text("name", "What's Your Name", Required()),
	)
}

// PasswordForm checks a submitted password against a stored hash.
func PasswordForm() *Form {
	return New(
		Text("email", "What's Your Email", Required()),
		Password("password", "What's Your Password", Required()),
	)
}

// SearchForm searches post content for a substring.
func SearchForm() *Form {
	return New(
		Text("searched", "Searched", Required()),
	)
}
