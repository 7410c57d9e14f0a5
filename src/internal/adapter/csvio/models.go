package csvio

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// TransactionRow is one raw input row, trimmed but not yet typed.
type TransactionRow struct {
	Type   string `validate:"required,oneof=chargeback deposit dispute resolve withdrawal"`
	Client string `validate:"required,number"`
	Tx     string `validate:"required,number"`
	Amount string
}

func (r TransactionRow) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs = append(errs, field+" is required")
		case "oneof":
			errs = append(errs, field+" must be one of "+fe.Param())
		case "number":
			errs = append(errs, field+" must be numeric")
		default:
			errs = append(errs, field+" is invalid")
		}
	}

	return errors.New(strings.Join(errs, "; "))
}

var accountHeader = []string{"client", "available", "held", "total", "locked"}
