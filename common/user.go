package common

// Role determines what a user may do through the HTTP surface.
// The store itself never checks roles; gating lives in the handlers.
type Role string

const (
	RoleDeveloper Role = "DEVELOPER"
	RoleSenior    Role = "SENIOR"
)

// User is an entry in the fixed roster. The roster is built once at
// startup and never mutated afterwards.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Credential pairs a roster user with its login password. Passwords are
// hardcoded demo values; nothing here is real authentication.
type Credential struct {
	User
	Password string `json:"-"`
}

// Roster returns the fixed set of known users with their credentials.
func Roster() []Credential {
	return []Credential{
		{
			User: User{
				ID:    1,
				Name:  "Senior Sofia",
				Email: "senior@example.com",
				Role:  RoleSenior,
			},
			Password: "123456",
		},
		{
			User: User{
				ID:    2,
				Name:  "Dev Dimitris",
				Email: "dev1@example.com",
				Role:  RoleDeveloper,
			},
			Password: "123456",
		},
	}
}

// Users returns the roster with passwords stripped.
func Users() []User {
	creds := Roster()
	users := make([]User, 0, len(creds))
	for _, c := range creds {
		users = append(users, c.User)
	}
	return users
}
