package validation

import (
	"regexp"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// TaskSchema validates task input.
var TaskSchema = Schema{
	"title": {
		Required("Title is required"),
		MinLength(3, "Title must be at least 3 characters"),
		MaxLength(100, "Title must not exceed 100 characters"),
	},
	"description": {
		MaxLength(500, "Description must not exceed 500 characters"),
	},
	"status": {
		Custom(func(v string) bool { return model.Status(v).Valid() },
			"Status must be one of todo, in-progress, completed"),
	},
	"priority": {
		Custom(func(v string) bool { return model.Priority(v).Valid() },
			"Priority must be one of low, medium, high"),
	},
}

// UserSchema validates registration input.
var UserSchema = Schema{
	"username": {
		Required("Username is required"),
		MinLength(3, "Username must be at least 3 characters"),
		MaxLength(30, "Username must not exceed 30 characters"),
		Pattern(usernamePattern, "Username can only contain letters, numbers, and underscores"),
	},
	"email": {
		Required("Email is required"),
		Pattern(emailPattern, "Invalid email format"),
	},
	"password": {
		Required("Password is required"),
		MinLength(6, "Password must be at least 6 characters"),
	},
}

// LoginSchema validates login input.
var LoginSchema = Schema{
	"email": {
		Required("Email is required"),
		Pattern(emailPattern, "Invalid email format"),
	},
	"password": {
		Required("Password is required"),
	},
}

// TaskValues flattens a task into the value bag checked by TaskSchema.
func TaskValues(t model.Task) map[string]string {
	return map[string]string{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
	}
}
