package share

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Caption renders the social share caption for a generated portrait.
// Indonesian is the default; any other locale gets the English text.
func Caption(locale, outfitDescription string) string {
	outfit := strings.TrimSpace(outfitDescription)
	if indonesian(locale) {
		caption := "Merdeka! Potret spesial Hari Kemerdekaan Republik Indonesia"
		if outfit != "" {
			caption += " dengan " + outfit
		}
		return caption + ". Dirgahayu Indonesia! #PotretMerdeka #HUTRI"
	}
	caption := "Merdeka! A special Indonesian Independence Day portrait"
	if outfit != "" {
		caption += " in " + outfit
	}
	return caption + ". Happy Independence Day! #PotretMerdeka #IndependenceDay"
}

// Headline returns a short display title for a portrait, built from its
// outfit description.
func Headline(outfitDescription string) string {
	outfit := strings.TrimSpace(outfitDescription)
	if outfit == "" {
		return "Potret Merdeka"
	}
	return cases.Title(language.Und).String(outfit)
}

// BundleText renders the caption.txt payload included in a portrait bundle.
func BundleText(locale, outfitDescription string) string {
	return Headline(outfitDescription) + "\n\n" + Caption(locale, outfitDescription) + "\n"
}

func indonesian(locale string) bool {
	locale = strings.ToLower(strings.TrimSpace(locale))
	return locale == "" || strings.HasPrefix(locale, "id")
}
