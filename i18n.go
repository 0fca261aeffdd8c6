// System string table: the user-facing strings and the active locale.
package main

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// String table keys. The key is the English text.
const (
	msgNoMatch  = "No application can perform this action"
	msgTitle    = "Open with"
	msgStarting = "Starting %s"
)

var translations = []struct {
	tag     language.Tag
	strings map[string]string
}{
	{language.Korean, map[string]string{
		msgNoMatch:  "이 동작을 수행할 수 있는 애플리케이션이 없습니다",
		msgTitle:    "다음으로 열기",
		msgStarting: "%s 시작 중",
	}},
	{language.German, map[string]string{
		msgNoMatch:  "Keine Anwendung kann diese Aktion ausführen",
		msgTitle:    "Öffnen mit",
		msgStarting: "%s wird gestartet",
	}},
	{language.French, map[string]string{
		msgNoMatch:  "Aucune application ne peut effectuer cette action",
		msgTitle:    "Ouvrir avec",
		msgStarting: "Démarrage de %s",
	}},
	{language.Spanish, map[string]string{
		msgNoMatch:  "Ninguna aplicación puede realizar esta acción",
		msgTitle:    "Abrir con",
		msgStarting: "Iniciando %s",
	}},
	{language.Japanese, map[string]string{
		msgNoMatch:  "この操作を実行できるアプリケーションがありません",
		msgTitle:    "アプリで開く",
		msgStarting: "%s を起動中",
	}},
}

// stringTable resolves user-facing strings for the current locale.
type stringTable struct {
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	tag       language.Tag
	printer   *message.Printer
}

func newStringTable(locale string) *stringTable {
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	supported := []language.Tag{language.English}
	for _, tr := range translations {
		for key, s := range tr.strings {
			_ = cat.SetString(tr.tag, key, s)
		}
		supported = append(supported, tr.tag)
	}

	t := &stringTable{
		cat:       cat,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}
	t.setLocale(locale)
	return t
}

// setLocale switches the table to the closest supported language and
// returns it. POSIX names such as ko_KR.UTF-8 are accepted.
func (t *stringTable) setLocale(locale string) language.Tag {
	t.tag = t.match(locale)
	t.printer = message.NewPrinter(t.tag, message.Catalog(t.cat))
	return t.tag
}

func (t *stringTable) match(locale string) language.Tag {
	name := normalizeLocale(locale)
	if name == "" {
		return language.English
	}
	want, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	_, i, conf := t.matcher.Match(want)
	if conf == language.No {
		return language.English
	}
	return t.supported[i]
}

// text formats the string stored under key.
func (t *stringTable) text(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

func normalizeLocale(locale string) string {
	s := strings.TrimSpace(locale)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
