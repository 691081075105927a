package staffgate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// CreateEmployeeInput is both the façade's create request and the upstream POST body.
type CreateEmployeeInput struct {
	Name   string `json:"name" validate:"notblank"`
	Salary *int   `json:"salary" validate:"required,min=1"`
	Age    *int   `json:"age" validate:"required,min=18,max=60"`
	Title  string `json:"title" validate:"notblank"`
}

var inputMessages = map[string]string{
	"name.notblank":   "Employee name must not be blank",
	"salary.required": "Salary is required",
	"salary.min":      "Salary must be greater than 0",
	"age.required":    "Age is required",
	"age.min":         "Age must be at least 18",
	"age.max":         "Age must not be more than 60",
	"title.notblank":  "Title must not be blank",
}

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}

		return name
	})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("cannot register notblank validation: %v", err))
	}

	return v
}

// ValidateCreateEmployeeInput returns a field to message map, or nil when the input is valid.
func ValidateCreateEmployeeInput(in CreateEmployeeInput) map[string]string {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"input": err.Error()}
	}

	fields := make(map[string]string, len(ves))

	for _, fe := range ves {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}

		fields[fe.Field()] = inputMessage(fe)
	}

	return fields
}

func inputMessage(fe validator.FieldError) string {
	if msg, ok := inputMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	return fmt.Sprintf("validation failed on '%s'", fe.Tag())
}
