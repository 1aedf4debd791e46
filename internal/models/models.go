package models

import "time"

type User struct {
	ID      string    `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Created time.Time `json:"created_at"`
}

type Role struct {
	ID   string `json:"role_id"`
	Name string `json:"name"`
}

type UserWithRoles struct {
	User
	Roles []string `json:"roles"`
}
