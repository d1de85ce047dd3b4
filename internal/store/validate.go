package store

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Yuuso/mossy/internal/domain"
	"github.com/Yuuso/mossy/internal/domain/models"
)

// validateProjectName checks a project name or alternate name before any
// I/O: non-empty, not all whitespace, and free of the alt-name separator
// that would corrupt the joined column.
func validateProjectName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if strings.TrimSpace(s) == "" {
				return errors.New("cannot be blank")
			}
			if strings.Contains(s, models.AltNameSeparator) {
				return fmt.Errorf("cannot contain %q", models.AltNameSeparator)
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: project name %v", domain.ErrValidation, err)
	}
	return nil
}

// validateTagName checks a tag name: non-empty, not all whitespace.
// The category may be empty.
func validateTagName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if strings.TrimSpace(s) == "" {
				return errors.New("cannot be blank")
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: tag name %v", domain.ErrValidation, err)
	}
	return nil
}
