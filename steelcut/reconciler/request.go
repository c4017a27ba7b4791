package reconciler

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request is one invocation's input. Either Name or Upgrade must be set;
// when Upgrade is set Name and State are ignored.
type Request struct {
	Name      string `validate:"required_without=Upgrade"`
	State     string `validate:"omitempty,oneof=present installed absent removed latest"`
	Upgrade   bool
	CheckMode bool
}

// Validate rejects requests that cannot be reconciled. The error satisfies
// IsConfigurationError.
func (req Request) Validate() error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return configurationError(err.Error())
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}
	return configurationError(strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without":
		return "one of the following is required: name, upgrade"
	case "oneof":
		return fmt.Sprintf("value of %s must be one of: %s, got: %v",
			strings.ToLower(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
}
