package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
)

// Canonical formats enforced at the boundary. Dates must be YYYY-MM-DD so
// lexicographic comparison downstream equals calendar order; months are the
// YYYY-MM prefix.
var (
	dateRegexp  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthRegexp = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

func validDate(s string) bool {
	return dateRegexp.MatchString(s)
}

func validMonth(s string) bool {
	return monthRegexp.MatchString(s)
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
