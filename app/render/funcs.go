package render

import (
	"html/template"

	"inkwell/app/models"
)

// DateLayout is how post dates are shown.
const DateLayout = "2006年1月2日"

var funcs = template.FuncMap{
	"date":        FormatDate,
	"readingTime": models.ReadingTime,
	"pageURL":     PageURL,
}

// FormatDate formats an ISO-8601 post date for display, or returns it as is
// when it cannot be parsed.
func FormatDate(date string) string {
	p := models.Post{Date: date}
	t, ok := p.PublishedAt()
	if !ok {
		return date
	}
	return t.Format(DateLayout)
}
