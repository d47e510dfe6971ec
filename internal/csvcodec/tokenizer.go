package csvcodec

import "strings"

// ParseLine splits one CSV line into fields.
//
// Inside quotes a doubled quote is a literal quote and a lone quote closes
// the quoted section; the character right after a closing quote is consumed
// as part of the same step, so a comma there still separates fields.
// Commas separate fields only outside quotes. The line is never rejected.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch != '"' {
				current.WriteRune(ch)
				continue
			}
			if i+1 >= len(runes) {
				inQuotes = false
				continue
			}
			i++
			switch next := runes[i]; next {
			case '"':
				current.WriteRune('"')
			case ',':
				inQuotes = false
				fields = append(fields, current.String())
				current.Reset()
			default:
				inQuotes = false
				current.WriteRune(next)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	return append(fields, current.String())
}
