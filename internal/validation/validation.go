package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zhtranslations "github.com/go-playground/validator/v10/translations/zh"

	"github.com/KasumiMercury/primind-sales-rules/internal/domain"
)

const (
	followUpBehaviorTag = "follow_up_behavior"
	followUpUnitTag     = "follow_up_unit"
	reminderUnitTag     = "reminder_unit"
	remindDayTag        = "remind_day"
	remindClockTag      = "remind_clock"
)

var customTranslations = map[string]string{
	followUpBehaviorTag: "{0}包含不支持的跟进行为",
	followUpUnitTag:     "{0}必须是分钟内、小时内或天内",
	reminderUnitTag:     "{0}必须是小时前、分钟前或天前",
	remindDayTag:        "{0}必须是1、2、3、4、5、7、10或14天",
	remindClockTag:      "{0}必须是hh:mm AM或hh:mm PM格式",
}

var remindClockPattern = regexp.MustCompile(`^(0?[1-9]|1[0-2]):[0-5][0-9] (AM|PM)$`)

// Validator checks request structures and reports failures keyed by their JSON path,
// with messages in Chinese.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	translator, found := uni.GetTranslator("zh")
	if !found {
		return nil, errors.New("zh translator not found")
	}

	if err := zhtranslations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validations := map[string]validator.Func{
		followUpBehaviorTag: behaviorValidation,
		followUpUnitTag:     followUpUnitValidation,
		reminderUnitTag:     reminderUnitValidation,
		remindDayTag:        remindDayValidation,
		remindClockTag:      remindClockValidation,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}

	for tag, text := range customTranslations {
		if err := registerTranslation(v, translator, tag, text); err != nil {
			return nil, err
		}
	}

	return &Validator{
		validate:   v,
		translator: translator,
	}, nil
}

func registerTranslation(v *validator.Validate, translator ut.Translator, tag, text string) error {
	register := func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}
	translate := func(trans ut.Translator, fe validator.FieldError) string {
		msg, err := trans.T(tag, fe.Field())
		if err != nil {
			return fe.Error()
		}
		return msg
	}

	if err := v.RegisterTranslation(tag, translator, register, translate); err != nil {
		return fmt.Errorf("failed to register translation for %s: %w", tag, err)
	}
	return nil
}

// Struct validates s. It returns nil when s is valid.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fieldPath(fe)] = fe.Translate(v.translator)
	}
	return fields, nil
}

// fieldPath drops the root struct name from the namespace, e.g.
// "RuleDraft.timeoutWarning.value" becomes "timeoutWarning.value".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func behaviorValidation(fl validator.FieldLevel) bool {
	switch domain.Behavior(fl.Field().String()) {
	case domain.BehaviorCall, domain.BehaviorSummary:
		return true
	default:
		return false
	}
}

func followUpUnitValidation(fl validator.FieldLevel) bool {
	return domain.FollowUpUnit(fl.Field().String()).IsValid()
}

func reminderUnitValidation(fl validator.FieldLevel) bool {
	return domain.ReminderUnit(fl.Field().String()).IsValid()
}

func remindDayValidation(fl validator.FieldLevel) bool {
	return slices.Contains(domain.RemindDays, int(fl.Field().Int()))
}

func remindClockValidation(fl validator.FieldLevel) bool {
	return remindClockPattern.MatchString(fl.Field().String())
}
