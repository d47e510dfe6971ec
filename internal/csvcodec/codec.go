// Package csvcodec converts assets to and from the spreadsheet CSV layout.
//
// Exported files always carry a header and quote every data field. Imported
// files may omit the header, use any of the known date formats and either
// the compact seven-column layout (disposal flagged inside the notes) or the
// extended nine-column layout written by Encode.
package csvcodec

import (
	"strconv"
	"strings"
	"time"

	"homekeeper/internal/domain"
)

const (
	// DisposedMarker flags a disposed asset in the marker column, or inside the
	// notes of the compact layout
	DisposedMarker = "除却済み"

	// shortDisposedMarker is accepted in the marker column of the extended layout
	shortDisposedMarker = "済"

	// Header is written as the first line of every export
	Header = "分類,製品,購入店,購入日,購入金額,耐用年数,除却,除却日,備考"

	// CompactHeader is the seven-column header of older exports
	CompactHeader = "分類,製品,購入店,購入日,購入金額,耐用年数,備考"

	// EnglishHeader is accepted on import
	EnglishHeader = "category,productName,store,purchaseDate,purchasePrice,usefulLifeYears,notes"

	minFields      = 2
	extendedFields = 9
)

const (
	colCategory = iota
	colProductName
	colStore
	colPurchaseDate
	colPrice
	colUsefulLife
	colMarker
	colDisposalDate
	colNotes
)

// Result is the outcome of a best-effort decode
type Result struct {
	Assets   []domain.Asset `json:"-"`
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
}

// Codec encodes and decodes asset CSV in a fixed time zone
type Codec struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Codec. Dates are written and read as calendar days in loc.
func New(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.Local
	}
	return &Codec{loc: loc, now: time.Now}
}

// WithClock replaces the clock used for unparseable purchase dates
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Encode renders the header followed by one fully quoted line per asset
func (c *Codec) Encode(assets []domain.Asset, format DateFormat) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	for _, a := range assets {
		var marker, disposedOn string
		if a.IsDisposed() {
			marker = DisposedMarker
			if at, ok := a.DisposedAt(); ok {
				disposedOn = format.Format(at, c.loc)
			}
		}

		fields := []string{
			a.Category,
			a.ProductName,
			a.Store,
			format.Format(a.PurchaseDate, c.loc),
			strconv.Itoa(a.PurchasePrice),
			strconv.Itoa(a.UsefulLifeYears),
			marker,
			disposedOn,
			a.Notes,
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(f))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Decode parses CSV text into assets. Lines with fewer than two fields are
// skipped and counted; Decode never fails.
func (c *Codec) Decode(text string, format DateFormat) Result {
	var res Result
	lines := splitLines(text)
	if len(lines) == 0 {
		return res
	}
	if isHeader(lines[0]) {
		lines = lines[1:]
	}

	now := c.now()
	for _, line := range lines {
		fields := ParseLine(line)
		if len(fields) < minFields {
			res.Skipped++
			continue
		}
		res.Assets = append(res.Assets, c.decodeRecord(fields, format, now))
		res.Imported++
	}
	return res
}

// decodeRecord trims the category, date, number and marker columns. Product
// name, store and notes are kept exactly as written.
func (c *Codec) decodeRecord(fields []string, format DateFormat, now time.Time) domain.Asset {
	raw := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	trimmed := func(i int) string {
		return strings.TrimSpace(raw(i))
	}

	category := trimmed(colCategory)
	if !domain.IsKnownCategory(category) {
		category = domain.CategoryOther
	}

	purchased, ok := parseDate(trimmed(colPurchaseDate), format, c.loc)
	if !ok {
		purchased = now
	}

	a := domain.Asset{
		Category:        category,
		ProductName:     raw(colProductName),
		Store:           raw(colStore),
		PurchaseDate:    purchased,
		PurchasePrice:   parsePrice(trimmed(colPrice)),
		UsefulLifeYears: parseYears(trimmed(colUsefulLife)),
	}

	if len(fields) >= extendedFields {
		// the marker column alone decides; the notes are free text
		marker := trimmed(colMarker)
		a.Notes = raw(colNotes)
		if strings.Contains(marker, DisposedMarker) || marker == shortDisposedMarker {
			if on, ok := parseDate(trimmed(colDisposalDate), format, c.loc); ok {
				a.MarkDisposed(on)
			} else {
				a.Disposal = &domain.Disposal{}
			}
		}
	} else {
		var disposed bool
		a.Notes, disposed = splitMarker(raw(colMarker))
		if disposed {
			a.Disposal = &domain.Disposal{}
		}
	}

	a.Normalize(now)
	return a
}

// splitMarker strips DisposedMarker from compact-layout notes and reports whether it was present
func splitMarker(notes string) (string, bool) {
	if !strings.Contains(notes, DisposedMarker) {
		return notes, false
	}
	return strings.TrimSpace(strings.ReplaceAll(notes, DisposedMarker, "")), true
}

var priceReplacer = strings.NewReplacer(",", "", "，", "", " ", "", "¥", "", "￥", "", "円", "")

func parsePrice(s string) int {
	n, err := strconv.Atoi(priceReplacer.Replace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseYears returns 0 for anything unusable so that Normalize applies the category default
func parseYears(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func isHeader(line string) bool {
	switch line {
	case Header, CompactHeader, EnglishHeader:
		return true
	}
	if strings.Contains(line, "分類") || strings.Contains(line, "製品") {
		return true
	}
	fields := ParseLine(line)
	return len(fields) >= minFields &&
		strings.EqualFold(strings.TrimSpace(fields[colCategory]), "category") &&
		strings.EqualFold(strings.TrimSpace(fields[colProductName]), "productName")
}

// splitLines drops a leading BOM, carriage returns and blank lines
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func quote(field string) string {
	return `"` + strings.ReplaceAll(lineBreaks.Replace(field), `"`, `""`) + `"`
}
