package sales

import "testing"

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name     string
		segment  string
		unitID   string
		sellerID string
	}{
		{
			name:     "both keys",
			segment:  "IDCILINDRO:C100;IDVENDEDOR:V1",
			unitID:   "C100",
			sellerID: "V1",
		},
		{
			name:     "whitespace and lowercase keys",
			segment:  "  idcilindro : C100 ; IdVendedor : V1  ",
			unitID:   "C100",
			sellerID: "V1",
		},
		{
			name:     "malformed field skipped silently",
			segment:  "IDCILINDRO:C100;garbage;IDVENDEDOR:V1",
			unitID:   "C100",
			sellerID: "V1",
		},
		{
			name:    "missing seller",
			segment: "IDCILINDRO:C100",
			unitID:  "C100",
		},
		{
			name:     "unknown keys ignored",
			segment:  "FOLIO:F1;IDVENDEDOR:V1;PRECIO:100",
			sellerID: "V1",
		},
		{
			name:    "empty segment",
			segment: "",
		},
		{
			name:    "no colons at all",
			segment: "just some text",
		},
		{
			name:     "empty value after colon",
			segment:  "IDCILINDRO:;IDVENDEDOR:V1",
			sellerID: "V1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRecord(tt.segment)
			if got.UnitID != tt.unitID {
				t.Errorf("UnitID = %q, want %q", got.UnitID, tt.unitID)
			}
			if got.SellerID != tt.sellerID {
				t.Errorf("SellerID = %q, want %q", got.SellerID, tt.sellerID)
			}
		})
	}
}
