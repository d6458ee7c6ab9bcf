package quotes

import "strings"

const (
	Delimiter = ","
	QuoteMark = `"`
	// closeWithDelimiter ends a quoted field and starts the speaker field.
	closeWithDelimiter = QuoteMark + Delimiter
)

// State is the position of the parser relative to a quoted field.
type State int

const (
	Scanning State = iota
	InQuotedField
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case InQuotedField:
		return "in-quoted-field"
	default:
		return "unknown"
	}
}

// Parser splits a two-column quote file into records one physical line at a
// time. It is deliberately lenient: quoted fields may span lines and contain
// the delimiter, but a doubled quote mark is not an escape.
type Parser struct {
	state   State
	header  bool
	quote   strings.Builder
	speaker string
	records []Record
}

// NewParser returns a parser that discards the first line it is fed.
func NewParser() *Parser {
	return &Parser{header: true}
}

// State returns the current parser state.
func (p *Parser) State() State {
	return p.state
}

// Feed consumes one line without its line terminator. A blank line flushes
// a pending quote even inside a quoted field, and a leading quote mark is
// stripped from every line.
func (p *Parser) Feed(line string) {
	if p.header {
		p.header = false
		return
	}

	if strings.TrimSpace(line) == "" {
		if strings.TrimSpace(p.quote.String()) != "" {
			p.emit()
		}
		return
	}

	if strings.HasPrefix(line, QuoteMark) {
		p.state = InQuotedField
		line = strings.TrimPrefix(line, QuoteMark)
	}
	if p.state == InQuotedField {
		p.closeOrAppend(line)
		return
	}

	// Lines without a delimiter carry no record.
	if idx := strings.LastIndex(line, Delimiter); idx >= 0 {
		p.add(NewRecord(line[:idx], line[idx+len(Delimiter):]))
	}
}

// closeOrAppend handles a line inside a quoted field, closing the field when
// the line holds `",` or ends with a bare quote mark.
func (p *Parser) closeOrAppend(line string) {
	if idx := strings.LastIndex(line, closeWithDelimiter); idx >= 0 {
		p.appendQuote(line[:idx])
		p.speaker = line[idx+len(closeWithDelimiter):]
		p.emit()
		return
	}
	if strings.HasSuffix(line, QuoteMark) {
		p.appendQuote(strings.TrimSuffix(line, QuoteMark))
		p.emit()
		return
	}
	p.appendQuote(line)
}

func (p *Parser) appendQuote(part string) {
	if p.quote.Len() > 0 {
		p.quote.WriteString("\n")
	}
	p.quote.WriteString(part)
}

func (p *Parser) emit() {
	p.add(NewRecord(p.quote.String(), p.speaker))
	p.quote.Reset()
	p.speaker = ""
	p.state = Scanning
}

// add keeps rec unless its text is empty.
func (p *Parser) add(rec Record) {
	if rec.Text == "" {
		return
	}
	p.records = append(p.records, rec)
}

// Finish flushes an unterminated quoted field and returns every record seen.
func (p *Parser) Finish() []Record {
	if strings.TrimSpace(p.quote.String()) != "" {
		p.emit()
	}
	p.state = Scanning
	records := p.records
	p.records = nil
	return records
}

// Parse splits raw into records. The first line is a header and is ignored.
func Parse(raw string) []Record {
	p := NewParser()
	for _, line := range strings.Split(normalizeNewlines(raw), "\n") {
		p.Feed(line)
	}
	return p.Finish()
}

func normalizeNewlines(raw string) string {
	return strings.ReplaceAll(raw, "\r\n", "\n")
}
