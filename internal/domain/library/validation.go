package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type createInput struct {
	Owner       string `validate:"required"`
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=1000"`
}

type updateInput struct {
	Owner       string  `validate:"required"`
	ID          string  `validate:"required"`
	Title       *string `validate:"omitempty,min=1,max=100"`
	Description *string `validate:"omitempty,max=1000"`
}

// ValidateCreate validates a library creation request.
func ValidateCreate(ownerID string, req CreateRequest) error {
	return check(createInput{
		Owner:       ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	})
}

// ValidateUpdate validates a library update request.
func ValidateUpdate(ownerID, id string, req UpdateRequest) error {
	in := updateInput{Owner: ownerID, ID: id, Description: req.Description}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		in.Title = &title
		if title == "" {
			return fmt.Errorf("%w: title must not be blank", ErrInvalidInput)
		}
	}
	return check(in)
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
