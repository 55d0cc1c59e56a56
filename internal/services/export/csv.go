package export

import (
	"strconv"
	"strings"

	"toxlens/internal/adapters/classifier"
)

var csvHeader = []string{"index", "probability", "prediction", "text", "spans_text", "spans_pos"}

// EncodeCSV renders items with every field quoted, header included
// rows are joined with a bare \n and there is no trailing newline
func EncodeCSV(items []classifier.Item) []byte {
	var b strings.Builder
	writeRow(&b, csvHeader)
	for _, it := range items {
		b.WriteByte('\n')
		writeRow(&b, csvRecord(it))
	}
	return []byte(b.String())
}

func csvRecord(it classifier.Item) []string {
	prob := ""
	if it.Probability != nil {
		prob = strconv.FormatFloat(*it.Probability, 'f', -1, 64)
	}
	pred := "0"
	if it.Prediction {
		pred = "1"
	}
	texts := make([]string, len(it.Spans))
	pos := make([]string, len(it.Spans))
	for i, s := range it.Spans {
		texts[i] = s.Text
		pos[i] = s.Position()
	}
	return []string{
		strconv.Itoa(it.Index + 1),
		prob,
		pred,
		it.Text,
		strings.Join(texts, "|"),
		strings.Join(pos, "|"),
	}
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
