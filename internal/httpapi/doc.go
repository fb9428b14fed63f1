// Package httpapi provides the HTTP handlers, middleware, and router for the
// calendar API.
//
// The router exposes the following endpoints:
//   - GET /days/{date}: the day view. Response: {"date","metadata","occurrences"}
//     where occurrences are sorted all-day first, then by slot start time.
//   - POST /events and POST /rules: create a one-off event or a recurrence
//     rule. Validation failures return 422 with a field-to-message map.
//   - PUT /events/{date}/{id} and PUT /rules/{id}: replace the editable
//     details of a record. Unknown identifiers return 404.
//   - DELETE /days/{date}/occurrences/{id}: remove one occurrence. For a
//     one-off event the record is deleted; for a rule the date is excluded.
//   - DELETE /rules/{id}: delete a series. With ?from=YYYY-MM-DD the series
//     is truncated instead, keeping occurrences before the given date.
//   - POST /rules/{id}/detach: convert one day of a rule into an independent
//     event with its own details.
//   - GET /search?q=keyword: case-insensitive title and description search.
//   - GET /export.ics?from=YYYY-MM-DD&to=YYYY-MM-DD: iCalendar export of the
//     requested range.
//
// Request/response DTOs live in models.go so tests and documentation share
// the same ground truth.
package httpapi
