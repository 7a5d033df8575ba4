package domain

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  Role   `db:"role"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
