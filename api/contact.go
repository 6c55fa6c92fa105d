package api

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minContactMessage = 8
	maxContactMessage = 2000
)

// Contact handles POST /contact. Submissions are validated and logged
// without the address or message text; nothing is stored or sent.
func (a *API) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	n := utf8.RuneCountInString(message)
	if !emailPattern.MatchString(email) || n < minContactMessage || n > maxContactMessage {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	_, domain, _ := strings.Cut(email, "@")
	a.events.info(EventContactReceived, r,
		slog.String("submission_id", uuid.NewString()),
		slog.String("email_domain", domain),
		slog.Int("message_length", n))
	a.metrics.contact.Inc()
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}
