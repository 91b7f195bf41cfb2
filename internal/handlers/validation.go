package handlers

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/queryhub/backend/internal/models"
)

// RegisterValidators installs the custom binding tags used by request models.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("tagname", validateTagName)
}

func validateTagName(fl validator.FieldLevel) bool {
	return models.ValidTagName(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}
