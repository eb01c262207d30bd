package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSONPhotosNullWhenEmpty(t *testing.T) {
	d := Debt{
		ID:     "abc",
		Name:   "Budi",
		Date:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Amount: 50000,
		Status: StatusBelumLunas,
		Photos: []string{},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `null`, string(raw["fotoDataUris"]), "no photos serializes as null, not []")
	assert.JSONEq(t, `"2024-06-01"`, string(raw["tanggal"]))
}

func TestUnmarshalJSONNormalizesPhotos(t *testing.T) {
	var d Debt
	require.NoError(t, json.Unmarshal([]byte(`{"nama":"Budi","tanggal":"2024-06-01","nominal":50000,"status":"Belum Lunas","deskripsi":"","fotoDataUris":null}`), &d))

	assert.NotNil(t, d.Photos)
	assert.Empty(t, d.Photos)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), d.Date)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "bare date", input: "2024-06-01", want: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{name: "RFC3339 truncated to day", input: "2024-06-01T23:59:00+07:00", want: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{name: "invalid", input: "01-06-2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutstandingTotal(t *testing.T) {
	debts := []Debt{
		{Amount: 50000, Status: StatusBelumLunas},
		{Amount: 20000, Status: StatusLunasSebagian},
		{Amount: 99000, Status: StatusLunas},
	}

	assert.Equal(t, int64(70000), OutstandingTotal(debts))
	assert.Equal(t, int64(0), OutstandingTotal(nil))
}
