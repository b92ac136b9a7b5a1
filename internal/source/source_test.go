package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "debts.toml",
			content: `extra_payment = 100
strategy = "snowball"

[[debts]]
id = "visa"
name = "Visa"
balance = 4200
interest_rate = 24.99
minimum_payment = 120

[[debts]]
id = "car"
name = "Car loan"
balance = 9800
interest_rate = 6.4
minimum_payment = 310
`,
		},
		{
			name: "json",
			file: "debts.json",
			content: `{"extra_payment": 100, "strategy": "snowball", "debts": [
  {"id": "visa", "name": "Visa", "balance": 4200, "interest_rate": 24.99, "minimum_payment": 120},
  {"id": "car", "name": "Car loan", "balance": 9800, "interest_rate": 6.4, "minimum_payment": 310}
]}`,
		},
		{
			name: "yaml",
			file: "debts.yml",
			content: `extra_payment: 100
strategy: snowball
debts:
  - id: visa
    name: Visa
    balance: 4200
    interest_rate: 24.99
    minimum_payment: 120
  - id: car
    name: Car loan
    balance: 9800
    interest_rate: 6.4
    minimum_payment: 310
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if doc.ExtraPayment != 100 || doc.Strategy != "snowball" {
				t.Errorf("defaults = %v/%q, want 100/snowball", doc.ExtraPayment, doc.Strategy)
			}
			if len(doc.Debts) != 2 {
				t.Fatalf("debts = %d, want 2", len(doc.Debts))
			}
			want := model.Debt{ID: "visa", Name: "Visa", Balance: 4200, InterestRate: 24.99, MinimumPayment: 120}
			if doc.Debts[0] != want {
				t.Errorf("debt[0] = %+v, want %+v", doc.Debts[0], want)
			}
			if doc.Debts[1].MinimumPayment != 310 {
				t.Errorf("debt[1].MinimumPayment = %v, want 310", doc.Debts[1].MinimumPayment)
			}
		})
	}
}

func TestParse_JSONArray(t *testing.T) {
	doc, err := Parse([]byte(`[{"id":"a","balance":10}]`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Debts) != 1 || doc.Debts[0].Balance != 10 {
		t.Errorf("Debts = %+v", doc.Debts)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "debts.csv", "id,balance\n"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load(writeFile(t, "bad.json", `{"debts": [`)); err == nil {
		t.Error("malformed json returned nil error")
	}
}

func TestNormalize_AssignsIDs(t *testing.T) {
	debts := []model.Debt{{Name: " Store card ", Balance: 650}, {Name: "Other", Balance: 1}}
	if err := Normalize(debts); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if debts[0].ID == "" || debts[1].ID == "" || debts[0].ID == debts[1].ID {
		t.Errorf("IDs = %q, %q; want two distinct generated IDs", debts[0].ID, debts[1].ID)
	}
	if debts[0].Name != "Store card" {
		t.Errorf("Name = %q, want trimmed", debts[0].Name)
	}
}

func TestNormalize_DuplicateID(t *testing.T) {
	debts := []model.Debt{{ID: "a"}, {ID: " a "}}
	if err := Normalize(debts); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestEncodeParse(t *testing.T) {
	doc := Document{
		ExtraPayment: 50,
		Debts: []model.Debt{
			{ID: "visa", Name: "Visa", Balance: 4200, InterestRate: 24.99, MinimumPayment: 120, OriginalAmount: 6000},
		},
	}
	for _, f := range []Format{FormatTOML, FormatJSON, FormatYAML} {
		data, err := Encode(doc, f)
		if err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
		got, err := Parse(data, f)
		if err != nil {
			t.Fatalf("Parse(%s): %v", f, err)
		}
		if got.ExtraPayment != 50 || len(got.Debts) != 1 || got.Debts[0] != doc.Debts[0] {
			t.Errorf("%s: got %+v, want %+v", f, got, doc)
		}
	}
}
