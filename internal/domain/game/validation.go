package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpggio/chessnote/internal/domain/tree"
)

// MaxTitleLength is the longest accepted title, in characters.
const MaxTitleLength = 200

var validate = validator.New()

type saveInput struct {
	Owner string     `validate:"required"`
	Title string     `validate:"max=200"`
	Root  *tree.Node `validate:"required"`
}

type resaveInput struct {
	Owner string     `validate:"required"`
	ID    string     `validate:"required"`
	Title string     `validate:"max=200"`
	Root  *tree.Node `validate:"required"`
}

// ValidateSave validates a save request.
func ValidateSave(ownerID string, req SaveRequest) error {
	return check(saveInput{Owner: ownerID, Title: req.Title, Root: req.Root})
}

// ValidateResave validates a resave request.
func ValidateResave(ownerID, id string, req ResaveRequest) error {
	in := resaveInput{Owner: ownerID, ID: id, Root: req.Root}
	if req.Title != nil {
		in.Title = *req.Title
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
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
