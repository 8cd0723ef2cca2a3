package feed

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

const productID = "-//orbyt//agenda//EN"

// Export renders agenda items as an iCalendar object. Each item becomes one
// VEVENT whose UID is the item's instance ID, so repeated exports of the
// same window produce identical calendars.
func Export(items []agenda.Item, calName string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if calName != "" {
		cal.SetXWRCalName(calName)
	}

	now := time.Now().UTC()
	for _, it := range items {
		ve := cal.AddEvent(it.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(it.Title)
		if it.AllDay {
			ve.SetAllDayStartAt(it.Start)
			ve.SetAllDayEndAt(it.End)
		} else {
			ve.SetStartAt(it.Start)
			ve.SetEndAt(it.End)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(it.Type))
	}
	return cal
}
