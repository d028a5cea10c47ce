package validator

import (
	"errors"
	"fmt"
	"regexp"

	"maitre/pkg/logger"
	"maitre/pkg/model"

	"github.com/go-playground/validator/v10"
)

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type RestaurantValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRestaurantValidator(log *logger.Logger) *RestaurantValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator", "error", err)
	}

	return &RestaurantValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRegex.MatchString(fl.Field().String())
}

func (v *RestaurantValidator) Validate(restaurant *model.Restaurant) error {
	return v.translate(v.validate.Struct(restaurant))
}

func (v *RestaurantValidator) ValidateSitting(sitting *model.Sitting) error {
	if err := v.translate(v.validate.Struct(sitting)); err != nil {
		return err
	}

	if sitting.StartDate != nil && sitting.EndDate != nil && sitting.EndDate.Before(*sitting.StartDate) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if sitting.DayOfWeek == nil && sitting.StartDate == nil {
		return fmt.Errorf("sitting requires a day_of_week or a date range")
	}

	return nil
}

func (v *RestaurantValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	first := validationErrs[0]
	switch first.Tag() {
	case "required":
		return fmt.Errorf("%s is required", first.Field())
	case "min":
		return fmt.Errorf("%s must be at least %s", first.Field(), first.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", first.Field(), first.Param())
	case "mongodb":
		return fmt.Errorf("%s must be a valid MongoDB ObjectID", first.Field())
	case "timezone":
		return fmt.Errorf("%s must be a valid IANA timezone", first.Field())
	case "time_of_day":
		return fmt.Errorf("%s must be in HH:MM format", first.Field())
	}
	return fmt.Errorf("%s: %s", first.Field(), first.Error())
}
