package httpapi

import (
	"github.com/example/personal-calendar/internal/application"
	"github.com/example/personal-calendar/internal/event"
	"github.com/example/personal-calendar/internal/metadata"
	"github.com/example/personal-calendar/internal/recurrence"
)

type eventRequest struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	TimeSlot    string `json:"time_slot"`
}

type ruleRequest struct {
	eventRequest
	Pattern patternDTO `json:"pattern"`
}

type patternDTO struct {
	Type     string   `json:"type"`
	Interval int      `json:"interval,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Dates    []string `json:"dates,omitempty"`
}

func (p patternDTO) toPattern() recurrence.Pattern {
	pattern := recurrence.Pattern{Kind: recurrence.KindFromName(p.Type)}
	switch pattern.Kind {
	case recurrence.KindCustomInterval:
		pattern.Interval = p.Interval
		pattern.Unit = recurrence.Unit(p.Unit)
	case recurrence.KindCustomDates:
		if len(p.Dates) > 0 {
			pattern.Dates = make(map[string]struct{}, len(p.Dates))
			for _, key := range p.Dates {
				pattern.Dates[key] = struct{}{}
			}
		}
	}
	return pattern
}

type detailsRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	TimeSlot    string `json:"time_slot"`
}

func (r detailsRequest) detailsInput() application.DetailsInput {
	return application.DetailsInput{
		Title:       r.Title,
		Category:    event.Category(r.Category),
		Description: r.Description,
		Slot:        event.TimeSlot(r.TimeSlot),
	}
}

type detachRequest struct {
	Date string `json:"date"`
	detailsRequest
}

type occurrenceDTO struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	CategoryColor string `json:"category_color"`
	Description   string `json:"description,omitempty"`
	TimeSlot      string `json:"time_slot"`
	Recurring     bool   `json:"recurring"`
	Pattern       string `json:"pattern,omitempty"`
}

func toOccurrenceDTO(occ application.Occurrence) occurrenceDTO {
	style := event.StyleFor(occ.Category)
	dto := occurrenceDTO{
		ID:            occ.SourceID,
		Date:          occ.DateKey(),
		Title:         occ.Title,
		Category:      string(occ.Category),
		CategoryLabel: style.Label,
		CategoryColor: style.Color,
		Description:   occ.Description,
		TimeSlot:      string(occ.Slot),
		Recurring:     occ.Recurring,
	}
	if occ.Recurring {
		dto.Pattern = occ.PatternKind.String()
	}
	return dto
}

func toOccurrenceDTOs(occs []application.Occurrence) []occurrenceDTO {
	out := make([]occurrenceDTO, 0, len(occs))
	for _, occ := range occs {
		out = append(out, toOccurrenceDTO(occ))
	}
	return out
}

type dayResponse struct {
	Date        string          `json:"date"`
	Metadata    *metadataDTO    `json:"metadata,omitempty"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}

type metadataDTO struct {
	LunarLabel    string `json:"lunar_label,omitempty"`
	SolarTerm     string `json:"solar_term,omitempty"`
	Festival      string `json:"festival,omitempty"`
	HolidayName   string `json:"holiday_name,omitempty"`
	RestDay       bool   `json:"rest_day"`
	MakeupWorkday bool   `json:"makeup_workday"`
}

func toMetadataDTO(meta metadata.DayMetadata) *metadataDTO {
	return &metadataDTO{
		LunarLabel:    meta.LunarLabel,
		SolarTerm:     meta.SolarTerm,
		Festival:      meta.Festival,
		HolidayName:   meta.HolidayName,
		RestDay:       meta.RestDay,
		MakeupWorkday: meta.MakeupWorkday,
	}
}

type searchResponse struct {
	Keyword string          `json:"keyword"`
	Results []occurrenceDTO `json:"results"`
}
