package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags over a request body and flattens the
// failures into a field -> message map suitable for ValidationErrors.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	out := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
		}
		return out
	}
	out["_"] = err.Error()
	return out
}
