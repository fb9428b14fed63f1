package event

// Category labels a record for grouping and presentation. The vocabulary is
// open: stored documents may carry categories this build has never seen, so
// the type is a plain string with a lookup table rather than a closed enum.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryDaily    Category = "daily"
	CategoryPersonal Category = "personal"
	CategoryCustom   Category = "custom"
)

// Style holds the presentation attributes attached to a known category.
type Style struct {
	Label string
	Color string
}

var categoryStyles = map[Category]Style{
	CategoryWork:     {Label: "Work", Color: "#4A90D9"},
	CategoryDaily:    {Label: "Daily", Color: "#7CB342"},
	CategoryPersonal: {Label: "Personal", Color: "#AB47BC"},
	CategoryCustom:   {Label: "Custom", Color: "#FF6B35"},
}

var fallbackStyle = Style{Label: "Other", Color: "#9E9E9E"}

// StyleFor resolves presentation attributes for a category, falling back to
// a neutral style for categories known only to the stored data.
func StyleFor(category Category) Style {
	if style, ok := categoryStyles[category]; ok {
		return style
	}
	return fallbackStyle
}
