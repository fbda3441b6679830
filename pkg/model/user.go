package model

type Role string

const (
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type Child struct {
	ID      string `json:"id" bson:"_id" yaml:"id"`
	Name    string `json:"name" bson:"name" yaml:"name"`
	ClassID string `json:"class_id" bson:"class_id" yaml:"class_id"`
}

type User struct {
	ID       string   `json:"id" bson:"_id" yaml:"id"`
	Name     string   `json:"name" bson:"name" yaml:"name"`
	Email    string   `json:"email" bson:"email" yaml:"email"`
	Role     Role     `json:"role" bson:"role" yaml:"role"`
	ClassID  string   `json:"class_id,omitempty" bson:"class_id,omitempty" yaml:"class_id,omitempty"`
	ChildIDs []string `json:"child_ids,omitempty" bson:"child_ids,omitempty" yaml:"children,omitempty"`
}

func (u *User) IsParent() bool  { return u.Role == RoleParent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Session is the explicit "current user" handed to every call site.
type Session struct {
	User User
}
