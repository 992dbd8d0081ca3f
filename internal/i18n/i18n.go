// Package i18n translates interface strings. Lesson content is shown as
// authored; only the chrome around it is localized.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

type state struct {
	loc  *i18n.Localizer
	lang string
}

var (
	bundle      *i18n.Bundle
	matcher     language.Matcher
	supported   []language.Tag
	defaultLang string
)

// Init loads every embedded locale with lang as the fallback language.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	b := i18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := path.Join("locales", e.Name())
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, name); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	// The default language goes first so the matcher falls back to it.
	tags := []language.Tag{tag}
	for _, t := range b.LanguageTags() {
		if t != tag {
			tags = append(tags, t)
		}
	}
	bundle, matcher, supported, defaultLang = b, language.NewMatcher(tags), tags, tag.String()
	return nil
}

// Languages returns the supported language tags, default first.
func Languages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// Match picks the best supported language for the given preferences, which
// may be plain tags or Accept-Language values. Unparseable entries are skipped.
func Match(prefs ...string) string {
	var want []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}
	if len(want) == 0 {
		return defaultLang
	}
	_, idx, conf := matcher.Match(want...)
	if conf == language.No {
		return defaultLang
	}
	return supported[idx].String()
}

// WithLanguage stores a localizer for lang in the context.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, state{loc: i18n.NewLocalizer(bundle, lang), lang: lang})
}

func fromCtx(ctx context.Context) state {
	if st, ok := ctx.Value(ctxKey{}).(state); ok {
		return st
	}
	return state{loc: i18n.NewLocalizer(bundle, defaultLang), lang: defaultLang}
}

// Lang returns the language of the request in ctx.
func Lang(ctx context.Context) string {
	return fromCtx(ctx).lang
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	s, err := fromCtx(ctx).loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

// T translates a message by ID.
func T(ctx context.Context, msgID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message by ID.
func Tp(ctx context.Context, msgID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}
