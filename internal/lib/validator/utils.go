package validator

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"cineconsole/proj/internal/domain/models"
	"cineconsole/proj/internal/lib/apperr"

	govalidator "github.com/go-playground/validator/v10"
)

// New returns a validator with the custom domain tags registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("roomtype", ValidateRoomType); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("roomstatus", ValidateRoomStatus); err != nil {
		panic(err)
	}
	return v
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	fieldName = camelToSnake(origFieldName)
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if jsonName := strings.Split(tag, ",")[0]; jsonName != "" {
			fieldName = jsonName
		}
	}
	return
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

// Validate is ValidateStruct wrapped into the shared ValidationError.
func Validate(validator *govalidator.Validate, obj any) error {
	if errs := ValidateStruct(validator, obj); len(errs) > 0 {
		return &apperr.ValidationError{Fields: errs}
	}
	return nil
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "lt":
			errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
		case "gt":
			errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "len":
			errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
		case "url":
			errorMsg = "Value must be a valid URL"
		case "email":
			errorMsg = "Value must be a valid email address"
		case "alphanum":
			errorMsg = "Value must be alphanumeric"
		case "numeric":
			errorMsg = "Value must contain digits only"
		case "roomtype":
			errorMsg = fmt.Sprintf("Value must be one of %v", models.RoomTypes)
		case "roomstatus":
			errorMsg = fmt.Sprintf("Value must be one of %v", models.RoomStatuses)
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

func ValidateRoomType(fl govalidator.FieldLevel) bool {
	v := models.RoomType(fl.Field().String())
	for _, rt := range models.RoomTypes {
		if v == rt {
			return true
		}
	}
	return false
}

func ValidateRoomStatus(fl govalidator.FieldLevel) bool {
	v := models.RoomStatus(fl.Field().String())
	for _, s := range models.RoomStatuses {
		if v == s {
			return true
		}
	}
	return false
}
