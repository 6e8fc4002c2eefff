package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	flightNumberRe  = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)
	airlineCodeRe   = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	seatLabelRe     = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)
	personNameRe    = regexp.MustCompile(`^[A-Za-z ]+$`)
	contactNumberRe = regexp.MustCompile(`^[0-9]{10}$`)
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	v.RegisterValidation("flight_number", matches(flightNumberRe))
	v.RegisterValidation("airline_code", matches(airlineCodeRe))
	v.RegisterValidation("seat_label", matches(seatLabelRe))
	v.RegisterValidation("person_name", matches(personNameRe))
	v.RegisterValidation("contact_number", matches(contactNumberRe))

	return &Validator{validate: v}
}

// Struct validates s and reports every failing field as a single
// validation error with one "field: message" detail per failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.KindValidation, err, "Validation failed")
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s: %s", fieldPath(fe), message(fe)))
	}
	return domain.ValidationError("Validation failed", details...)
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the root struct name from the namespace, so nested
// failures read "passengers[1].seatNumber".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "flight_number":
		return "must be 4-10 uppercase letters or digits"
	case "airline_code":
		return "must be 2-10 uppercase letters or digits"
	case "seat_label":
		return "must be 2-5 uppercase letters or digits (e.g. 12A)"
	case "person_name":
		return "must contain only letters and spaces"
	case "contact_number":
		return "must be 10 digits"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
