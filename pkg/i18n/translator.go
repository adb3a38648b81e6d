package i18n

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *zap.Logger
}

// NewTranslator builds a Translator from the embedded active.*.toml catalogues.
func NewTranslator(defaultLocale string, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.fr.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Warn("i18n: failed to load catalogue", zap.String("file", file), zap.Error(err))
		}
	}
	return &Translator{bundle: bundle, defaultLanguage: tag, logger: logger}
}

// T renders the message identified by key for the given locale, falling back to the
// default locale and finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Debug("i18n: localize failed", zap.String("key", key), zap.Strings("locales", languages), zap.Error(err))
		return key
	}
	return msg
}

// Default returns the default locale tag as a string.
func (t *Translator) Default() string { return t.defaultLanguage.String() }

// MatchAcceptLanguage picks the best supported locale for an Accept-Language header.
// It returns "" when the header is empty or unparsable.
func MatchAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	base, _ := supported[idx].Base()
	return base.String()
}
