package period

import (
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthNames = map[language.Tag][12]string{
	language.Indonesian: {"januari", "februari", "maret", "april", "mei", "juni", "juli", "agustus", "september", "oktober", "november", "desember"},
	language.English:    {"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"},
	language.Spanish:    {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
}

// El primer idioma es el de respaldo cuando no hay coincidencia.
var supported = []language.Tag{language.Indonesian, language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Locale idioma de las etiquetas (nombres de mes).
type Locale struct {
	tag language.Tag
}

// DefaultLocale indonesio.
func DefaultLocale() Locale { return Locale{tag: language.Indonesian} }

// MatchLocale elige el idioma soportado más cercano a las preferencias dadas
// (valores de Accept-Language o códigos simples como "en"). Sin coincidencia usa el fallback.
func MatchLocale(fallback string, prefs ...string) Locale {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if fallback != "" {
		if t, err := language.Parse(fallback); err == nil {
			tags = append(tags, t)
		}
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale()
	}
	return Locale{tag: supported[idx]}
}

// String código BCP 47 del idioma.
func (l Locale) String() string { return l.base().String() }

func (l Locale) base() language.Tag {
	if _, ok := monthNames[l.tag]; ok {
		return l.tag
	}
	return language.Indonesian
}

// MonthName nombre del mes con mayúscula inicial ("Januari", "March", "Diciembre").
func (l Locale) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	tag := l.base()
	return cases.Title(tag).String(monthNames[tag][m-1])
}

// MonthLabel "Januari 2024".
func (l Locale) MonthLabel(year int, m time.Month) string {
	return l.MonthName(m) + " " + strconv.Itoa(year)
}

// BucketKey clave del bucket: "2006-01" mensual, "2006" anual.
func BucketKey(t time.Time, g Granularity) string {
	if g == GranularityYearly {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

// BucketLabel etiqueta legible de una clave de bucket. Claves no reconocidas se devuelven tal cual.
func (l Locale) BucketLabel(key string, g Granularity) string {
	if g == GranularityYearly {
		return key
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return l.MonthLabel(t.Year(), t.Month())
}
