package debt

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

func testValidator(maxPhotoBytes int64) *Validator {
	v := NewValidator(maxPhotoBytes)
	v.now = func() time.Time {
		return time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC)
	}
	return v
}

func photoURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestValidateName(t *testing.T) {
	v := testValidator(1 << 20)

	tests := []struct {
		name      string
		input     string
		wantName  string
		wantError bool
	}{
		{name: "plain name", input: "Budi", wantName: "Budi"},
		{name: "whitespace trimmed", input: "  Budi  ", wantName: "Budi"},
		{name: "empty rejected", input: "", wantError: true},
		{name: "whitespace only rejected", input: "   ", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, _, err := v.Validate(Form{Name: tt.input, Amount: "1000"})
			if tt.wantError {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "nama", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, draft.Name)
		})
	}
}

func TestValidateAmount(t *testing.T) {
	v := testValidator(1 << 20)

	tests := []struct {
		name      string
		input     string
		want      int64
		wantError bool
	}{
		{name: "plain digits", input: "50000", want: 50000},
		{name: "thousand separators stripped", input: "50.000", want: 50000},
		{name: "currency prefix stripped", input: "Rp 50,000", want: 50000},
		{name: "surrounding text stripped", input: "about 1500 or so", want: 1500},
		{name: "no digits", input: "abc", wantError: true},
		{name: "arabic-indic digits rejected", input: "٥٠", wantError: true},
		{name: "fullwidth digits rejected", input: "５０", wantError: true},
		{name: "non-ascii digits stripped, ascii kept", input: "٥ 500", want: 500},
		{name: "empty", input: "", wantError: true},
		{name: "zero", input: "0", wantError: true},
		{name: "all zero digits", input: "0.000", wantError: true},
		{name: "overflows int64", input: "99999999999999999999", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, _, err := v.Validate(Form{Name: "Budi", Amount: tt.input})
			if tt.wantError {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "nominal", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, draft.Amount)
		})
	}
}

func TestValidateDate(t *testing.T) {
	v := testValidator(1 << 20)
	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		want      time.Time
		wantError bool
	}{
		{name: "empty defaults to today", input: "", want: today},
		{name: "bare date", input: "2024-06-01", want: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{name: "RFC3339 truncated to the day", input: "2024-06-01T18:30:00+07:00", want: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{name: "today is allowed", input: "2024-06-15", want: today},
		{name: "future rejected", input: "2024-06-16", wantError: true},
		{name: "before 1900 rejected", input: "1899-12-31", wantError: true},
		{name: "garbage rejected", input: "15/06/2024", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, _, err := v.Validate(Form{Name: "Budi", Amount: "1000", Date: tt.input})
			if tt.wantError {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "tanggal", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, draft.Date)
		})
	}
}

func TestValidateStatus(t *testing.T) {
	v := testValidator(1 << 20)

	tests := []struct {
		name      string
		input     string
		want      entity.Status
		wantError bool
	}{
		{name: "empty defaults to Belum Lunas", input: "", want: entity.StatusBelumLunas},
		{name: "Belum Lunas", input: "Belum Lunas", want: entity.StatusBelumLunas},
		{name: "Lunas Sebagian", input: "Lunas Sebagian", want: entity.StatusLunasSebagian},
		{name: "Lunas", input: "Lunas", want: entity.StatusLunas},
		{name: "unknown rejected", input: "Paid", wantError: true},
		{name: "wrong case rejected", input: "lunas", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, _, err := v.Validate(Form{Name: "Budi", Amount: "1000", Status: tt.input})
			if tt.wantError {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "status", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, draft.Status)
		})
	}
}

func TestValidatePhotosAreIndependent(t *testing.T) {
	v := testValidator(16)

	good := photoURI("small")
	oversize := photoURI("this payload is longer than sixteen bytes")
	malformed := "data:text/plain;base64,aGVsbG8="

	draft, photoErrs, err := v.Validate(Form{
		Name:   "Budi",
		Amount: "1000",
		Photos: []string{good, oversize, malformed},
	})

	require.NoError(t, err, "photo failures must not abort the submission")
	assert.Equal(t, []string{good}, draft.Photos)
	require.Len(t, photoErrs, 2)

	var tooLarge *FileTooLargeError
	require.ErrorAs(t, photoErrs[0], &tooLarge)
	assert.Equal(t, 1, tooLarge.Index)

	var verr *ValidationError
	require.ErrorAs(t, photoErrs[1], &verr)
	assert.Equal(t, "fotoDataUris", verr.Field)
}

func TestValidateTrimsDescription(t *testing.T) {
	v := testValidator(1 << 20)

	draft, _, err := v.Validate(Form{Name: "Budi", Amount: "1000", Description: "  beli pulsa  "})

	require.NoError(t, err)
	assert.Equal(t, "beli pulsa", draft.Description)
}
