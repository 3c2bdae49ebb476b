package handler

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/scheduling"
)

// 自定义的校验标签：clock 表示 HH:MM 或 HH:MM:SS，day 表示 YYYY-MM-DD
var customValidations = map[string]struct {
	fn      validator.Func
	message string
}{
	"clock": {
		fn: func(fl validator.FieldLevel) bool {
			_, ok := scheduling.NormalizeTime(fl.Field().String())
			return ok
		},
		message: "{0}必须是 HH:MM 格式的时间",
	},
	"day": {
		fn: func(fl validator.FieldLevel) bool {
			_, err := time.Parse(scheduling.DateLayout, fl.Field().String())
			return err == nil
		},
		message: "{0}必须是 YYYY-MM-DD 格式的日期",
	},
}

func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	for tag, v := range customValidations {
		if err := validate.RegisterValidation(tag, v.fn); err != nil {
			return err
		}

		message := v.message
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
