package model

// KnownCategories lists the categories the extraction prompt suggests and the
// views layer decorates. Categories are not enforced as an enum: an
// unrecognized value passes through as-is after sanitization.
var KnownCategories = []string{
	"food",
	"transport",
	"clothes",
	"healthcare",
	"beauty",
	"household",
	"car",
	"flights",
	"vacation",
	"other",
}

var categoryEmoji = map[string]string{
	"food":       "🍔",
	"transport":  "🚌",
	"clothes":    "👕",
	"healthcare": "💊",
	"beauty":     "💅",
	"household":  "🏠",
	"car":        "🚗",
	"flights":    "✈️",
	"vacation":   "🏖️",
	"other":      "🧾",
}

// CategoryEmoji returns the display emoji for a category, falling back to the
// generic receipt marker for unknown values.
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return categoryEmoji[DefaultCategory]
}
