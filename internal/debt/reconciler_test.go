package debt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haekalr/kasbon/internal/domain/entity"
)

func day(s string) time.Time {
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func openDebt(name string, amount int64) entity.Debt {
	return entity.Debt{
		ID:     "debt-1",
		Name:   name,
		Date:   day("2024-01-10"),
		Amount: amount,
		Status: entity.StatusBelumLunas,
		Photos: []string{},
	}
}

func TestReconcileCreatesWhenNoOpenMatch(t *testing.T) {
	draft := Draft{
		Name:   "Budi",
		Date:   day("2024-02-01"),
		Amount: 50000,
		Status: entity.StatusBelumLunas,
	}

	outcome := Reconcile(draft, nil)

	require.Equal(t, ActionCreate, outcome.Action)
	assert.Empty(t, outcome.Debt.ID)
	assert.Equal(t, "Budi", outcome.Debt.Name)
	assert.Equal(t, int64(50000), outcome.Debt.Amount)
	assert.Equal(t, entity.StatusBelumLunas, outcome.Debt.Status)
}

func TestReconcilePaidEntriesAreClosedHistory(t *testing.T) {
	paid := openDebt("Budi", 10000)
	paid.Status = entity.StatusLunas

	outcome := Reconcile(Draft{Name: "Budi", Date: day("2024-02-01"), Amount: 5000, Status: entity.StatusBelumLunas}, []entity.Debt{paid})

	assert.Equal(t, ActionCreate, outcome.Action, "a Lunas entry must never be merged into")
}

func TestReconcileMergeIsCaseInsensitive(t *testing.T) {
	existing := openDebt("Budi", 50000)

	outcome := Reconcile(Draft{Name: "budi", Date: day("2024-02-01"), Amount: 20000, Status: entity.StatusLunas}, []entity.Debt{existing})

	require.Equal(t, ActionMerge, outcome.Action)
	assert.Equal(t, "debt-1", outcome.Debt.ID, "merge must target the matched entry")
}

func TestReconcilePayment(t *testing.T) {
	tests := []struct {
		name       string
		existing   int64
		payment    int64
		wantAmount int64
		wantStatus entity.Status
	}{
		{name: "partial payment reopens as Belum Lunas", existing: 50000, payment: 20000, wantAmount: 30000, wantStatus: entity.StatusBelumLunas},
		{name: "exact payment closes the entry", existing: 50000, payment: 50000, wantAmount: 0, wantStatus: entity.StatusLunas},
		{name: "overpayment floors at zero", existing: 50000, payment: 70000, wantAmount: 0, wantStatus: entity.StatusLunas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := openDebt("Budi", tt.existing)
			draft := Draft{Name: "Budi", Date: day("2024-02-01"), Amount: tt.payment, Status: entity.StatusLunas}

			outcome := Reconcile(draft, []entity.Debt{existing})

			require.Equal(t, ActionMerge, outcome.Action)
			assert.Equal(t, tt.wantAmount, outcome.Debt.Amount)
			assert.Equal(t, tt.wantStatus, outcome.Debt.Status)
		})
	}
}

// A partial payment resets the entry to Belum Lunas, not Lunas Sebagian.
// This mirrors how the ledger has always behaved; change it only on an
// explicit product decision.
func TestReconcilePartialPaymentDoesNotUseLunasSebagian(t *testing.T) {
	existing := openDebt("Budi", 50000)

	outcome := Reconcile(Draft{Name: "Budi", Date: day("2024-02-01"), Amount: 1, Status: entity.StatusLunas}, []entity.Debt{existing})

	assert.Equal(t, entity.StatusBelumLunas, outcome.Debt.Status)
	assert.NotEqual(t, entity.StatusLunasSebagian, outcome.Debt.Status)
}

func TestReconcileAdditionalDebt(t *testing.T) {
	tests := []struct {
		name        string
		draftStatus entity.Status
	}{
		{name: "submitted as Belum Lunas", draftStatus: entity.StatusBelumLunas},
		{name: "submitted as Lunas Sebagian still reopens", draftStatus: entity.StatusLunasSebagian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := openDebt("Budi", 50000)
			draft := Draft{Name: "Budi", Date: day("2024-02-01"), Amount: 10000, Status: tt.draftStatus}

			outcome := Reconcile(draft, []entity.Debt{existing})

			require.Equal(t, ActionMerge, outcome.Action)
			assert.Equal(t, int64(60000), outcome.Debt.Amount)
			assert.Equal(t, entity.StatusBelumLunas, outcome.Debt.Status)
		})
	}
}

func TestReconcileMergeTakesDraftDate(t *testing.T) {
	existing := openDebt("Budi", 50000)

	outcome := Reconcile(Draft{Name: "Budi", Date: day("2024-03-15"), Amount: 1000, Status: entity.StatusBelumLunas}, []entity.Debt{existing})

	assert.Equal(t, day("2024-03-15"), outcome.Debt.Date)
}

func TestReconcileDescriptionJoin(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		draft    string
		want     string
	}{
		{name: "both present joined with separator", existing: "beli pulsa", draft: "cicilan", want: "beli pulsa; cicilan"},
		{name: "only existing", existing: "beli pulsa", draft: "", want: "beli pulsa"},
		{name: "only draft", existing: "", draft: "cicilan", want: "cicilan"},
		{name: "both empty", existing: "", draft: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := openDebt("Budi", 50000)
			existing.Description = tt.existing

			outcome := Reconcile(Draft{Name: "Budi", Date: day("2024-02-01"), Amount: 1000, Status: entity.StatusBelumLunas, Description: tt.draft}, []entity.Debt{existing})

			assert.Equal(t, tt.want, outcome.Debt.Description)
		})
	}
}

func TestReconcilePhotoUnion(t *testing.T) {
	existing := openDebt("Budi", 50000)
	existing.Photos = []string{"data:image/png;base64,AAA", "data:image/png;base64,BBB"}

	draft := Draft{
		Name:   "Budi",
		Date:   day("2024-02-01"),
		Amount: 1000,
		Status: entity.StatusBelumLunas,
		Photos: []string{"data:image/png;base64,BBB", "data:image/png;base64,CCC"},
	}

	outcome := Reconcile(draft, []entity.Debt{existing})

	assert.Equal(t, []string{
		"data:image/png;base64,AAA",
		"data:image/png;base64,BBB",
		"data:image/png;base64,CCC",
	}, outcome.Debt.Photos, "existing photos first, duplicates removed")
}

func TestUnionPhotosIdempotent(t *testing.T) {
	photos := []string{"data:image/png;base64,AAA"}

	once := unionPhotos(photos, photos)
	twice := unionPhotos(once, photos)

	assert.Equal(t, photos, once)
	assert.Equal(t, once, twice)
}

func TestFindOpen(t *testing.T) {
	paidBudi := openDebt("Budi", 10000)
	paidBudi.ID = "paid"
	paidBudi.Status = entity.StatusLunas

	openBudi := openDebt("Budi", 20000)
	openBudi.ID = "open"

	collection := []entity.Debt{paidBudi, openBudi}

	match := FindOpen(collection, "BUDI")
	require.NotNil(t, match)
	assert.Equal(t, "open", match.ID)

	assert.Nil(t, FindOpen(collection, "Siti"))
}
