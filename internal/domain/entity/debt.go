package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for debt dates. Entries carry
// a calendar date only; any time component is dropped at the boundary.
const DateLayout = "2006-01-02"

// Status is the repayment state of a debt entry. The set is closed; the
// values are the Indonesian labels the ledger has always stored.
type Status string

const (
	StatusBelumLunas    Status = "Belum Lunas"    // unpaid
	StatusLunasSebagian Status = "Lunas Sebagian" // partially paid
	StatusLunas         Status = "Lunas"          // paid in full
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusBelumLunas, StatusLunasSebagian, StatusLunas:
		return true
	}
	return false
}

// Debt represents one entry in the ledger: who owes, since when, how much,
// and any supporting description and photos.
type Debt struct {
	ID          string    `json:"id"`
	Name        string    `json:"nama"`
	Date        time.Time `json:"tanggal"`
	Amount      int64     `json:"nominal"` // rupiah; zero only on a fully paid entry
	Status      Status    `json:"status"`
	Description string    `json:"deskripsi"`
	Photos      []string  `json:"fotoDataUris"` // data URIs; JSON null when empty
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Open reports whether the entry still counts toward outstanding debt.
func (d *Debt) Open() bool {
	return d.Status != StatusLunas
}

// debtJSON is the wire shape: tanggal as a plain date string, fotoDataUris
// as null (never []) when there are no photos.
type debtJSON struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"nama"`
	Date        string   `json:"tanggal"`
	Amount      int64    `json:"nominal"`
	Status      Status   `json:"status"`
	Description string   `json:"deskripsi"`
	Photos      []string `json:"fotoDataUris"`
}

// MarshalJSON implements json.Marshaler.
func (d Debt) MarshalJSON() ([]byte, error) {
	var photos []string
	if len(d.Photos) > 0 {
		photos = d.Photos
	}
	return json.Marshal(debtJSON{
		ID:          d.ID,
		Name:        d.Name,
		Date:        d.Date.Format(DateLayout),
		Amount:      d.Amount,
		Status:      d.Status,
		Description: d.Description,
		Photos:      photos,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Dates are accepted as plain
// dates or full RFC3339 timestamps; absent photos normalize to an empty
// slice so callers never see nil-vs-empty ambiguity.
func (d *Debt) UnmarshalJSON(data []byte) error {
	var raw debtJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := ParseDate(raw.Date)
	if err != nil {
		return err
	}

	d.ID = raw.ID
	d.Name = raw.Name
	d.Date = date
	d.Amount = raw.Amount
	d.Status = raw.Status
	d.Description = raw.Description
	d.Photos = raw.Photos
	if d.Photos == nil {
		d.Photos = []string{}
	}
	return nil
}

// ParseDate parses a wire date, accepting a bare date or an RFC3339
// timestamp (the historical export format), truncated to the day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// OutstandingTotal sums the amounts of all entries that are not fully
// paid. Lunas entries are closed history and never count.
func OutstandingTotal(debts []Debt) int64 {
	var total int64
	for i := range debts {
		if debts[i].Open() {
			total += debts[i].Amount
		}
	}
	return total
}
