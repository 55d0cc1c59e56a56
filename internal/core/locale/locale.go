// Package locale holds the user-facing strings of both views
//
// Vietnamese is the default catalog, English is available for operators.
// Scores are pre-formatted with a dot decimal separator before they reach the
// printer so every language shows "72.00".
package locale

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// message keys
const (
	keyFlagged     = "verdict.flagged"
	keyClean       = "verdict.clean"
	keyDictionary  = "verdict.dictionary"
	keyVerdictLine = "verdict.line"
	keyRowFlagged  = "row.flagged"
	keyRowClean    = "row.clean"
	keyChartHit    = "chart.matched"
	keyChartMiss   = "chart.clean"
	keyError       = "error.line"
	keyExportDOCX  = "error.export_docx"
)

var supported = []language.Tag{language.Vietnamese, language.English}

var (
	cat     = build()
	matcher = language.NewMatcher(supported)
)

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Vietnamese))
	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}

	vi := language.Vietnamese
	set(vi, keyFlagged, "Có dấu hiệu độc hại/tiêu cực")
	set(vi, keyClean, "Không phát hiện độc hại/tiêu cực")
	set(vi, keyDictionary, " — Khớp từ điển")
	set(vi, keyVerdictLine, "%[1]s (xác suất: %[2]s%%, ngưỡng: %[3]d%%)%[4]s")
	set(vi, keyRowFlagged, "Độc hại")
	set(vi, keyRowClean, "Không độc hại")
	set(vi, keyChartHit, "Xúc phạm")
	set(vi, keyChartMiss, "Không")
	set(vi, keyError, "Lỗi: %s")
	set(vi, keyExportDOCX, "Xuất DOCX thất bại")

	en := language.English
	set(en, keyFlagged, "Toxic or negative content detected")
	set(en, keyClean, "No toxic or negative content detected")
	set(en, keyDictionary, " — Dictionary match")
	set(en, keyVerdictLine, "%[1]s (probability: %[2]s%%, threshold: %[3]d%%)%[4]s")
	set(en, keyRowFlagged, "Toxic")
	set(en, keyRowClean, "Not toxic")
	set(en, keyChartHit, "Offensive")
	set(en, keyChartMiss, "Clean")
	set(en, keyError, "Error: %s")
	set(en, keyExportDOCX, "DOCX export failed")
	return b
}

// Labels renders localized strings for one language
type Labels struct {
	tag language.Tag
	p   *message.Printer
}

// New picks the closest supported language for lang, Vietnamese when unknown
func New(lang string) *Labels {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		tag = language.English
	default:
		tag = language.Vietnamese
	}
	return &Labels{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Tag is the resolved language
func (l *Labels) Tag() language.Tag { return l.tag }

// Verdict is the headline label for the single view
func (l *Labels) Verdict(flagged bool) string {
	if flagged {
		return l.p.Sprintf(keyFlagged)
	}
	return l.p.Sprintf(keyClean)
}

// VerdictLine is the full single-view summary, e.g.
// "Có dấu hiệu độc hại/tiêu cực (xác suất: 72.00%, ngưỡng: 50%)"
func (l *Labels) VerdictLine(flagged bool, score float64, threshold int, dictionaryMatch bool) string {
	note := ""
	if dictionaryMatch {
		note = l.p.Sprintf(keyDictionary)
	}
	return l.p.Sprintf(keyVerdictLine, l.Verdict(flagged), Score(score), threshold, note)
}

// Row is the short verdict used in batch rows
func (l *Labels) Row(flagged bool) string {
	if flagged {
		return l.p.Sprintf(keyRowFlagged)
	}
	return l.p.Sprintf(keyRowClean)
}

// ChartLabels names the two chart categories, matched first
func (l *Labels) ChartLabels() [2]string {
	return [2]string{l.p.Sprintf(keyChartHit), l.p.Sprintf(keyChartMiss)}
}

// Error prefixes msg for display
func (l *Labels) Error(msg string) string { return l.p.Sprintf(keyError, msg) }

// ExportFailed is shown when the document endpoint rejects an export
func (l *Labels) ExportFailed() string { return l.p.Sprintf(keyExportDOCX) }

// Score formats a percentage with two decimals and a dot separator
func Score(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
