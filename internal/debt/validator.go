package debt

import (
	"strings"
	"time"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

// earliestDate is a sanity bound, not a business rule: nobody in this
// ledger has been owed money since before 1900.
var earliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Form is the raw submitted input, everything still text except the
// photos, which arrive as data URIs produced by the photo intake endpoint.
type Form struct {
	Name        string   `json:"nama"`
	Date        string   `json:"tanggal"`
	Amount      string   `json:"nominal"`
	Status      string   `json:"status"`
	Description string   `json:"deskripsi"`
	Photos      []string `json:"fotoDataUris"`
}

// Draft is a validated entry-to-be. It has no ID yet; the reconciler
// decides whether it becomes a new entry or merges into an existing one.
type Draft struct {
	Name        string
	Date        time.Time
	Amount      int64
	Status      entity.Status
	Description string
	Photos      []string
}

// Validator normalizes and validates raw form input. It is a pure
// transformation: no I/O, no logging, all failures returned.
type Validator struct {
	maxPhotoBytes int64
	now           func() time.Time
}

// NewValidator creates a validator with the given per-photo source cap.
func NewValidator(maxPhotoBytes int64) *Validator {
	return &Validator{maxPhotoBytes: maxPhotoBytes, now: time.Now}
}

// Validate turns a Form into a Draft. The second return collects per-photo
// failures: a rejected photo is dropped from the draft but does not abort
// the submission or the other photos. The final error is a fatal
// field-level ValidationError.
func (v *Validator) Validate(form Form) (Draft, []error, error) {
	var draft Draft

	name := strings.TrimSpace(form.Name)
	if name == "" {
		return draft, nil, &ValidationError{Field: "nama", Message: "name is required"}
	}
	draft.Name = name

	date, err := v.validateDate(form.Date)
	if err != nil {
		return draft, nil, err
	}
	draft.Date = date

	amount, err := parseAmount(form.Amount)
	if err != nil {
		return draft, nil, err
	}
	draft.Amount = amount

	status := entity.Status(form.Status)
	if form.Status == "" {
		status = entity.StatusBelumLunas
	}
	if !status.Valid() {
		return draft, nil, &ValidationError{Field: "status", Message: "unknown status: " + form.Status}
	}
	draft.Status = status

	draft.Description = strings.TrimSpace(form.Description)

	draft.Photos = make([]string, 0, len(form.Photos))
	var photoErrs []error
	for i, uri := range form.Photos {
		if err := v.checkPhoto(i, uri); err != nil {
			photoErrs = append(photoErrs, err)
			continue
		}
		draft.Photos = append(draft.Photos, uri)
	}

	return draft, photoErrs, nil
}

// validateDate parses the submitted date, defaulting to today. The date
// may not be in the future and may not predate earliestDate.
func (v *Validator) validateDate(raw string) (time.Time, error) {
	today := dateOnly(v.now())
	if strings.TrimSpace(raw) == "" {
		return today, nil
	}

	date, err := entity.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &ValidationError{Field: "tanggal", Message: "invalid date, use YYYY-MM-DD"}
	}
	date = dateOnly(date)

	if date.After(today) {
		return time.Time{}, &ValidationError{Field: "tanggal", Message: "date may not be in the future"}
	}
	if date.Before(earliestDate) {
		return time.Time{}, &ValidationError{Field: "tanggal", Message: "date is before 1900-01-01"}
	}
	return date, nil
}

// parseAmount strips everything but ASCII digits from free-form amount
// text ("50.000", "Rp 50,000") and requires a positive integer result.
// Non-ASCII digit runes are stripped too, never accumulated.
func parseAmount(raw string) (int64, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, &ValidationError{Field: "nominal", Message: "amount is required"}
	}

	var amount int64
	for _, r := range digits.String() {
		amount = amount*10 + int64(r-'0')
		if amount < 0 {
			return 0, &ValidationError{Field: "nominal", Message: "amount is too large"}
		}
	}
	if amount <= 0 {
		return 0, &ValidationError{Field: "nominal", Message: "amount must be greater than zero"}
	}
	return amount, nil
}

// checkPhoto verifies one data URI: image payload, well-formed base64,
// decoded source within the cap.
func (v *Validator) checkPhoto(index int, uri string) error {
	payload, err := decodeDataURI(uri)
	if err != nil {
		return &ValidationError{Field: "fotoDataUris", Message: err.Error()}
	}
	if size := int64(len(payload)); size > v.maxPhotoBytes {
		return &FileTooLargeError{Index: index, Size: size, Limit: v.maxPhotoBytes}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
