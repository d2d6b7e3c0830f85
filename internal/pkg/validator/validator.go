package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Self-service roles; ADMIN accounts are never created through the API
	validate.RegisterValidation("signup_role", oneOf("STUDENT", "INSTRUCTOR", ""))

	validate.RegisterValidation("course_level", oneOf("BEGINNER", "INTERMEDIATE", "ADVANCED", "ALL_LEVELS", ""))

	validate.RegisterValidation("lesson_type", oneOf("VIDEO", "TEXT", "QUIZ", "ASSIGNMENT", ""))

	validate.RegisterValidation("question_type", oneOf("SINGLE_CHOICE", "MULTIPLE_CHOICE", "TRUE_FALSE", ""))
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "containsany":
			errors[field] = "Value must contain one of: " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "signup_role":
			errors[field] = "Invalid role. Must be: STUDENT or INSTRUCTOR"
		case "course_level":
			errors[field] = "Invalid level. Must be: BEGINNER, INTERMEDIATE, ADVANCED, or ALL_LEVELS"
		case "lesson_type":
			errors[field] = "Invalid lesson type"
		case "question_type":
			errors[field] = "Invalid question type"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
