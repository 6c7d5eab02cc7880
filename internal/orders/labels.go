package orders

import "golang.org/x/text/language"

var labelMatcher = language.NewMatcher([]language.Tag{language.Russian, language.English})

var statusLabels = map[language.Tag]map[Status]string{
	language.Russian: {
		StatusAccepted:   "Принят",
		StatusProcessing: "В обработке",
		StatusInDelivery: "В доставке",
		StatusCompleted:  "Завершен",
		StatusCancelled:  "Отменен",
	},
	language.English: {
		StatusAccepted:   "Accepted",
		StatusProcessing: "Processing",
		StatusInDelivery: "In delivery",
		StatusCompleted:  "Completed",
		StatusCancelled:  "Cancelled",
	},
}

// Label returns the display name of s for the closest supported language.
// Russian is the fallback.
func Label(s Status, tags ...language.Tag) string {
	_, idx, _ := labelMatcher.Match(tags...)
	base := language.Russian
	if idx == 1 {
		base = language.English
	}
	if label, ok := statusLabels[base][s]; ok {
		return label
	}
	return string(s)
}

// LabelForHeader resolves the label from an Accept-Language header value.
func LabelForHeader(s Status, acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Label(s, language.Russian)
	}
	return Label(s, tags...)
}
