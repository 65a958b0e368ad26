package entities

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FormDateTimeLayout - формат поля expirationDate формы (datetime-local).
const FormDateTimeLayout = "2006-01-02T15:04"

// Сообщения валидации формы.
const (
	MsgRequired       = "This field is required."
	MsgMinLength      = "This field is required to be at least %s characters."
	MsgMaxLength      = "This field cannot be longer than %s characters."
	MsgInvalidDate    = "This field should be a date and time."
	MsgPasswordNeeded = "Password cannot be empty!"
)

// ErrValidation - базовая ошибка валидации формы.
var ErrValidation = errors.New("validation failed")

// NoteForm - значения формы создания/редактирования заметки.
type NoteForm struct {
	Content        string `json:"content" validate:"required,min=5,max=150"`
	Password       string `json:"password" validate:"required,min=5,max=20"`
	ExpirationDate string `json:"expirationDate" validate:"required,datetime=2006-01-02T15:04"`
}

// ValidationErrors сопоставляет имя поля формы с сообщением.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate проверяет ограничения полей формы.
func (f NoteForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	result := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		result[fe.Field()] = message(fe)
	}
	return result
}

// fieldRules - правила validate полей формы по их именам в JSON.
var fieldRules = formFieldRules()

func formFieldRules() map[string]string {
	rules := make(map[string]string)
	typ := reflect.TypeOf(NoteForm{})
	for i := range typ.NumField() {
		fld := typ.Field(i)
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		rules[name] = fld.Tag.Get("validate")
	}
	return rules
}

// ValidateFields проверяет только переданные поля формы (имя поля в JSON ->
// значение) по тем же правилам, что и Validate. Используется для частичного
// обновления.
func ValidateFields(values map[string]string) error {
	result := make(ValidationErrors)
	for field, value := range values {
		rules, ok := fieldRules[field]
		if !ok {
			continue
		}
		err := validate.Var(value, rules)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("%w: %s: %w", ErrValidation, field, err)
		}
		result[field] = message(fieldErrs[0])
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "min":
		return fmt.Sprintf(MsgMinLength, fe.Param())
	case "max":
		return fmt.Sprintf(MsgMaxLength, fe.Param())
	case "datetime":
		return MsgInvalidDate
	default:
		return fe.Error()
	}
}

// ParseFormDateTime разбирает значение поля expirationDate в часовом поясе loc.
func ParseFormDateTime(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(FormDateTimeLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expirationDate: %w", ErrValidation, err)
	}
	return t, nil
}

// FormatFormDateTime форматирует момент времени для поля формы.
func FormatFormDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(FormDateTimeLayout)
}

// DefaultFormDateTime возвращает начало текущего дня для новой заметки.
func DefaultFormDateTime(now time.Time, loc *time.Location) string {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.Format(FormDateTimeLayout)
}

// FormFromNote заполняет форму значениями сохраненной заметки.
func FormFromNote(n Note, loc *time.Location) NoteForm {
	form := NoteForm{Content: n.Content, Password: n.Password}
	if n.ExpirationDate != nil {
		form.ExpirationDate = FormatFormDateTime(*n.ExpirationDate, loc)
	}
	return form
}

// Apply переносит значения формы поверх заметки. Форма должна быть валидной.
func (f NoteForm) Apply(n Note, loc *time.Location) (Note, error) {
	exp, err := ParseFormDateTime(f.ExpirationDate, loc)
	if err != nil {
		return Note{}, err
	}
	n = n.Clone()
	n.Content = f.Content
	n.Password = f.Password
	utc := exp.UTC()
	n.ExpirationDate = &utc
	return n, nil
}
