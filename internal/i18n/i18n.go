// Package i18n holds the English and Spanish message catalogs for API
// responses and picks the language for a request.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

// CookieName is the cookie the site sets when a visitor toggles the language.
const CookieName = "lang"

//go:embed locales/*.json
var locales embed.FS

// Supported lists the catalog languages. The first entry is the fallback.
var Supported = []language.Tag{language.English, language.Spanish}

type Catalog struct {
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

// Load parses the embedded catalogs.
func Load() (*Catalog, error) {
	c := &Catalog{
		messages: make(map[language.Tag]map[string]string, len(Supported)),
		matcher:  language.NewMatcher(Supported),
	}
	for _, tag := range Supported {
		raw, err := locales.ReadFile("locales/" + tag.String() + ".json")
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", tag, err)
		}
		entries := map[string]string{}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", tag, err)
		}
		c.messages[tag] = entries
	}
	return c, nil
}

// MustLoad is Load for program start; the catalogs are compiled in, so a
// failure is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Negotiate picks the response language: the lang cookie first, then
// Accept-Language, then English.
func (c *Catalog) Negotiate(r *http.Request) language.Tag {
	var prefs []language.Tag
	if cookie, err := r.Cookie(CookieName); err == nil {
		if tag, err := language.Parse(cookie.Value); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if accept, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil {
		prefs = append(prefs, accept...)
	}
	if len(prefs) == 0 {
		return Supported[0]
	}
	_, idx, confidence := c.matcher.Match(prefs...)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Message returns the text for key in lang, falling back to English and
// then to the key itself.
func (c *Catalog) Message(lang language.Tag, key string) string {
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[Supported[0]][key]; ok {
		return msg
	}
	return key
}

// Keys returns the keys of the catalog for lang.
func (c *Catalog) Keys(lang language.Tag) []string {
	keys := make([]string, 0, len(c.messages[lang]))
	for k := range c.messages[lang] {
		keys = append(keys, k)
	}
	return keys
}
