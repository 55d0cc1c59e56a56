package locale

import (
	"testing"

	"golang.org/x/text/language"
)

func TestVerdictLine_Vietnamese(t *testing.T) {
	l := New("vi")
	got := l.VerdictLine(true, 72, 50, false)
	want := "Có dấu hiệu độc hại/tiêu cực (xác suất: 72.00%, ngưỡng: 50%)"
	if got != want {
		t.Fatalf("VerdictLine = %q, want %q", got, want)
	}
	got = l.VerdictLine(false, 3.456, 80, true)
	want = "Không phát hiện độc hại/tiêu cực (xác suất: 3.46%, ngưỡng: 80%) — Khớp từ điển"
	if got != want {
		t.Fatalf("VerdictLine = %q, want %q", got, want)
	}
}

func TestVerdictLine_English(t *testing.T) {
	l := New("en-US")
	if l.Tag() != language.English {
		t.Fatalf("tag = %v", l.Tag())
	}
	got := l.VerdictLine(true, 10, 50, false)
	want := "Toxic or negative content detected (probability: 10.00%, threshold: 50%)"
	if got != want {
		t.Fatalf("VerdictLine = %q, want %q", got, want)
	}
}

func TestFallbackIsVietnamese(t *testing.T) {
	for _, in := range []string{"", "fr", "not a tag"} {
		if tag := New(in).Tag(); tag != language.Vietnamese {
			t.Fatalf("New(%q).Tag() = %v", in, tag)
		}
	}
}

func TestRowAndChartLabels(t *testing.T) {
	l := New("vi")
	if l.Row(true) != "Độc hại" || l.Row(false) != "Không độc hại" {
		t.Fatalf("row labels: %q / %q", l.Row(true), l.Row(false))
	}
	if got := l.ChartLabels(); got != [2]string{"Xúc phạm", "Không"} {
		t.Fatalf("chart labels = %v", got)
	}
	if got := l.Error("hết giờ"); got != "Lỗi: hết giờ" {
		t.Fatalf("Error = %q", got)
	}
}

func TestScore(t *testing.T) {
	if Score(72) != "72.00" || Score(0.126) != "0.13" || Score(100) != "100.00" {
		t.Fatalf("Score formatting off: %s %s %s", Score(72), Score(0.126), Score(100))
	}
}
