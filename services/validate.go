package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"textbox/errors"
)

var validate = validator.New()

type registration struct {
	Username string `validate:"required,min=1,max=64,excludesall=0x20"`
}

func validateUsername(username string) error {
	if err := validate.Struct(registration{Username: username}); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidUsername, err)
	}
	return nil
}
