package events

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ticketly/internal/recurrence"
	"ticketly/internal/shared/apperrors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := recurrence.ParseWeekday(fl.Field().String())
	return ok
}

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", validateWeekday)
}

// RegisterValidators installs the event rules on gin's binding validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return registerRules(v)
}

// newValidator checks requests that do not come through gin binding, e.g. from the CLI
func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := registerRules(v); err != nil {
		panic(err)
	}
	return v
}

// validateRequest runs the struct rules and the cross-field schedule checks,
// returning the recurrence rule on success
func validateRequest(v *validator.Validate, req CreateEventRequest) (recurrence.Rule, error) {
	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
			}
			return recurrence.Rule{}, apperrors.Configuration("invalid event: %s", strings.Join(fields, "; "))
		}
		return recurrence.Rule{}, apperrors.Configuration("invalid event: %v", err)
	}

	// zero-padded HH:mm compares correctly as strings
	if req.StartTime >= req.EndTime {
		return recurrence.Rule{}, apperrors.Configuration("start time %s must be before end time %s", req.StartTime, req.EndTime)
	}

	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return recurrence.Rule{}, apperrors.Configuration("invalid start date %q", req.StartDate)
	}
	rule := recurrence.Rule{Kind: req.Recurrence, StartDate: start, SelectedWeekdays: req.SelectedWeekdays}
	if req.EndDate != "" {
		end, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			return recurrence.Rule{}, apperrors.Configuration("invalid end date %q", req.EndDate)
		}
		rule.EndDate = &end
	}
	if req.Recurrence != recurrence.Weekly && len(req.SelectedWeekdays) > 0 {
		return recurrence.Rule{}, apperrors.Configuration("selected weekdays are only allowed for weekly events")
	}
	return rule, nil
}
