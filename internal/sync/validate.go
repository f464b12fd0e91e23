package sync

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"userdir/internal/domain/user"
	apperrors "userdir/pkg/errors"
)

// userInput carries the user-editable fields through validation.
type userInput struct {
	FirstName string `validate:"required,min=2,max=35"`
	LastName  string `validate:"required,min=2,max=35"`
	Email     string `validate:"required,email"`
}

// CleanName trims a name and collapses runs of whitespace into single
// spaces.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// validateUser cleans u's names and checks the local input rules. It
// never touches the network or the repository; a failure here prevents
// any remote call.
func (c *Controller) validateUser(u user.User) (user.User, error) {
	u.FirstName = CleanName(u.FirstName)
	u.LastName = CleanName(u.LastName)
	u.Email = strings.TrimSpace(u.Email)

	in := userInput{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	if err := c.validate.Struct(in); err != nil {
		return user.User{}, formatValidationError(err)
	}
	return u, nil
}

// formatValidationError converts validator.ValidationErrors into the
// application's ValidationError with a human-readable message.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	var field string
	for _, e := range validationErrors {
		field = fieldLabel(e.Field())
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, "invalid email format")
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters long", field, e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must not exceed %s characters", field, e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

func fieldLabel(field string) string {
	switch field {
	case "FirstName":
		return "first name"
	case "LastName":
		return "last name"
	case "Email":
		return "email"
	default:
		return field
	}
}
