package appointments

import "testing"

func TestRecord_ClientNameStripsCodesAndAnnotations(t *testing.T) {
	rec := Record{NameText: "Jane Doe 96131 (2)"}

	if got := rec.ClientName(); got != "Jane Doe" {
		t.Fatalf("unexpected client name %q", got)
	}
}

func TestRecord_BillingCodeIsNumericSubstring(t *testing.T) {
	rec := Record{NameText: "Jane Doe 96131"}

	if got := rec.BillingCode(); got != "96131" {
		t.Fatalf("unexpected billing code %q", got)
	}
}

func TestRecord_CancelledRequiresNonBlankMarker(t *testing.T) {
	if (Record{CancelledBy: "  "}).Cancelled() {
		t.Fatalf("whitespace marker must not count as cancelled")
	}
	if !(Record{CancelledBy: "front desk"}).Cancelled() {
		t.Fatalf("expected non-empty marker to count as cancelled")
	}
}
