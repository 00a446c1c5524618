package domain

// User is the profile returned by the login endpoint.
type User struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

// Session is an authenticated session: the bearer token plus the
// profile it belongs to. At most one session exists per installation.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
