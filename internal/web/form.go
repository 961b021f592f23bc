package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/service"
)

var dateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pathID reads the {id} wildcard of the route.
func pathID(r *http.Request) (uint, bool) {
	return parseID(r.PathValue("id"))
}

// formID reads a required numeric form field.
func formID(r *http.Request, field string) (uint, error) {
	id, ok := parseID(r.PostFormValue(field))
	if !ok {
		return 0, &service.ValidationError{Field: field, Message: field + " is required"}
	}
	return id, nil
}

// parseOptionalTime accepts date or datetime-local input; blank means unset.
func parseOptionalTime(field, raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t, nil
		}
	}
	return nil, &service.ValidationError{Field: field, Message: fmt.Sprintf("%s must look like 2025-11-30 or 2025-11-30T09:00", field)}
}

func isChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// redirectToBoard sends the browser back to the board, keeping the selected group.
func redirectToBoard(w http.ResponseWriter, r *http.Request, groupID uint) {
	target := "/"
	if groupID != 0 {
		target = "/?groupId=" + strconv.FormatUint(uint64(groupID), 10)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
