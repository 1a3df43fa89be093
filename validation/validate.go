// Package validation provides request validation with multi-language error messages.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/slog"
)

// Validator wraps go-playground validator with translator support
type Validator struct {
	validate      *validator.Validate
	uni           *ut.UniversalTranslator
	defaultLocale string
}

// Config holds configuration for the validator
type Config struct {
	Logger *slog.Logger
	// DefaultLocale is the language used when the requested one is unknown
	DefaultLocale string
	// UseJSONFieldNames reports fields by their JSON name
	UseJSONFieldNames bool
	// Locales is a list of additional locales to register with the validator
	Locales []LocaleConfig
}

// TranslationRegistrar is a function that registers translations for a locale
type TranslationRegistrar func(v *validator.Validate, trans ut.Translator) error

// LocaleConfig holds configuration for a locale
type LocaleConfig struct {
	Locale    locales.Translator
	Registrar TranslationRegistrar
}

// Locale creates a new locale configuration
func Locale(locale locales.Translator, registrar TranslationRegistrar) LocaleConfig {
	return LocaleConfig{
		Locale:    locale,
		Registrar: registrar,
	}
}

// DefaultConfig returns default validator configuration
func DefaultConfig() Config {
	return Config{
		DefaultLocale:     "en",
		UseJSONFieldNames: true,
	}
}

// New creates a validator. A locale that fails to register is logged and
// skipped; messages for it fall back to the default locale.
func New(cfg Config) *Validator {
	if cfg.Logger == nil {
		cfg.Logger = slog.DiscardLogger()
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}

	v := validator.New()
	english := en.New()
	uni := ut.New(english, english)

	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	}

	for _, locale := range cfg.Locales {
		if err := addLocale(v, uni, locale); err != nil {
			cfg.Logger.Error(err, "locale", locale.Locale.Locale())
		}
	}

	if cfg.UseJSONFieldNames {
		v.RegisterTagNameFunc(jsonFieldName)
	}

	return &Validator{
		validate:      v,
		uni:           uni,
		defaultLocale: cfg.DefaultLocale,
	}
}

func addLocale(v *validator.Validate, uni *ut.UniversalTranslator, locale LocaleConfig) error {
	if err := uni.AddTranslator(locale.Locale, true); err != nil {
		return errors.Errorf("validation: add translator: %w", err)
	}
	trans, ok := uni.GetTranslator(locale.Locale.Locale())
	if !ok {
		return errors.New("validation: failed to get translator")
	}
	if err := locale.Registrar(v, trans); err != nil {
		return errors.Errorf("validation: register translations: %w", err)
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// Engine exposes the underlying validator for custom rules.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Validate validates a struct and returns formatted errors
func (v *Validator) Validate(data any, locale ...string) error {
	if err := v.validate.Struct(data); err != nil {
		lang := v.defaultLocale
		if len(locale) > 0 && locale[0] != "" {
			lang = locale[0]
		}
		return v.formatValidationErrors(err, lang)
	}
	return nil
}

// formatValidationErrors turns validator errors into a 422 whose data maps
// field names to translated messages.
func (v *Validator) formatValidationErrors(err error, locale string) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.BadRequest("Validation failed", err)
	}

	trans, ok := v.uni.GetTranslator(locale)
	if !ok {
		trans, _ = v.uni.GetTranslator(v.defaultLocale)
	}

	errs := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		errs[fieldError.Field()] = fieldError.Translate(trans)
	}

	return errors.UnprocessableEntity(errs, err)
}
