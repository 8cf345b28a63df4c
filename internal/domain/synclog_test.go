package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIsRalawiseSKU(t *testing.T) {
	cases := []struct {
		sku  string
		want bool
	}{
		{"JH001DPBK2XL", true},
		{"jh001dpbk2xl", true},
		{"TS010WHTM", true},
		{"  JH001DPBKXS  ", true},
		{"AB12", false},
		{"my-own-sku", false},
		{"JH001 DPBK", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsRalawiseSKU(c.sku); got != c.want {
			t.Errorf("IsRalawiseSKU(%q) = %v, want %v", c.sku, got, c.want)
		}
	}
}

func TestLogEntryJSONShape(t *testing.T) {
	qty := 12
	success := &LogEntry{
		Time:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SKU:       "JH001DPBK2XL",
		Status:    StatusSuccess,
		Quantity:  &qty,
		VariantID: 999,
	}
	payload, err := json.Marshal(success)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(payload)
	if !strings.Contains(s, `"quantity":12`) || !strings.Contains(s, `"variantId":999`) {
		t.Errorf("unexpected success payload %s", s)
	}
	if strings.Contains(s, `"error"`) || strings.Contains(s, `"message"`) {
		t.Errorf("empty optional fields must be omitted: %s", s)
	}

	failure := &LogEntry{
		Time:   time.Now(),
		SKU:    "TS010WHTM",
		Status: StatusError,
		Error:  "no stock returned",
	}
	payload, err = json.Marshal(failure)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s = string(payload)
	if !strings.Contains(s, `"error":"no stock returned"`) {
		t.Errorf("unexpected error payload %s", s)
	}
	if strings.Contains(s, `"quantity"`) {
		t.Errorf("nil quantity must be omitted: %s", s)
	}
}

func TestLogEntryLine(t *testing.T) {
	qty := 7
	e := &LogEntry{
		Time:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SKU:       "JH001DPBK2XL",
		Status:    StatusSuccess,
		Quantity:  &qty,
		VariantID: 999,
	}
	line := e.Line()
	for _, want := range []string{"2025-06-01T12:00:00Z", "[success]", "sku=JH001DPBK2XL", "qty=7"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	e.Status = StatusError
	e.Error = "boom"
	if line := e.Line(); !strings.Contains(line, "[error]") || !strings.Contains(line, "boom") {
		t.Errorf("unexpected error line %q", line)
	}

	e.Status = StatusSuccess
	e.Error = ""
	e.Message = MessageNoChange
	if line := e.Line(); !strings.Contains(line, MessageNoChange) {
		t.Errorf("unexpected no-change line %q", line)
	}
}
