package pdfmailer

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmissionInput holds the raw, untrusted fields of one form submission
// exactly as they arrive over the wire.
type SubmissionInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CustomID       string `json:"customId"`
	SubmissionDate string `json:"submissionDate"`
}

// Submission is the normalized record of one accepted form entry.
// Constructed only via SubmissionInput.Validate.
type Submission struct {
	ID              string     `bson:"_id" json:"id"`
	FirstName       string     `bson:"firstName" json:"firstName"`
	LastName        string     `bson:"lastName" json:"lastName"`
	Email           string     `bson:"email" json:"email"`
	Phone           string     `bson:"phone" json:"phone"`
	CustomID        string     `bson:"customId,omitempty" json:"customId,omitempty"`
	SubmissionDate  *time.Time `bson:"submissionDate,omitempty" json:"submissionDate,omitempty"`
	SystemTimestamp time.Time  `bson:"systemTimestamp" json:"systemTimestamp"`
}

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// FieldErrors is the ordered list of all validation failures for one input.
// It is never empty when returned as an error.
type FieldErrors []FieldError

// Error implements the error interface.
func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// emailPattern accepts the common shape of an email address. Full RFC 5322
// parsing is deliberately out of scope; the SMTP server has the final word.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// submissionDateLayouts lists the accepted ISO-8601 shapes, tried in order.
var submissionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Validate checks and normalizes the input, collecting every field violation
// rather than stopping at the first. On success it returns a Submission with
// a server-assigned ID and the given receipt timestamp. It is a pure function
// of its inputs and performs no I/O.
func (in SubmissionInput) Validate(now time.Time) (*Submission, error) {
	var errs FieldErrors

	firstName := sanitizeText(in.FirstName)
	if firstName == "" {
		errs = append(errs, FieldError{Field: "firstName", Msg: "First name is required."})
	}

	lastName := sanitizeText(in.LastName)
	if lastName == "" {
		errs = append(errs, FieldError{Field: "lastName", Msg: "Last name is required."})
	}

	email, ok := normalizeEmail(in.Email)
	if !ok {
		errs = append(errs, FieldError{Field: "email", Msg: "Valid email is required."})
	}

	phone := sanitizeText(in.Phone)
	if phone == "" {
		errs = append(errs, FieldError{Field: "phone", Msg: "Phone number is required."})
	}

	customID := sanitizeText(in.CustomID)

	// Empty string is treated as absent, not as a parse failure.
	var submissionDate *time.Time
	if raw := strings.TrimSpace(in.SubmissionDate); raw != "" {
		parsed, err := parseISODate(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: "submissionDate", Msg: "Submission date must be a valid ISO-8601 date."})
		} else {
			submissionDate = &parsed
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Submission{
		ID:              uuid.NewString(),
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Phone:           phone,
		CustomID:        customID,
		SubmissionDate:  submissionDate,
		SystemTimestamp: now,
	}, nil
}

// sanitizeText trims whitespace and escapes HTML-unsafe characters so the
// value is safe to interpolate into HTML templates.
func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// normalizeEmail trims the address, validates its shape, and lowercases the
// domain part. The local part is preserved as-is since its case sensitivity
// is up to the receiving server.
func normalizeEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !emailPattern.MatchString(s) {
		return "", false
	}

	at := strings.LastIndex(s, "@")
	return s[:at+1] + strings.ToLower(s[at+1:]), true
}

// parseISODate parses an ISO-8601 date or date-time string.
func parseISODate(s string) (time.Time, error) {
	for _, layout := range submissionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// templateData flattens the submission into the key/value mapping consumed by
// the template populator. Timestamps are rendered human-readable; absent
// optional fields map to empty strings so conditional blocks drop cleanly.
func (s *Submission) templateData(brandName string) map[string]string {
	submissionDate := ""
	if s.SubmissionDate != nil {
		submissionDate = s.SubmissionDate.Format("Jan 2, 2006 3:04:05 PM")
	}

	return map[string]string{
		"firstName":       s.FirstName,
		"lastName":        s.LastName,
		"email":           s.Email,
		"phone":           s.Phone,
		"customId":        s.CustomID,
		"submissionDate":  submissionDate,
		"systemTimestamp": s.SystemTimestamp.Format("Jan 2, 2006 3:04:05 PM"),
		"brandName":       brandName,
	}
}
