// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

type bibEntry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// ParseBibTeX reads @article, @inproceedings and similar entries and maps
// their fields onto import columns. @comment, @preamble and @string blocks
// are skipped; string macros are not expanded. headers are the template
// columns, so missing data shows up as row errors.
func ParseBibTeX(r io.Reader) ([]Row, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading BibTeX: %w", err)
	}
	entries, err := parseBibEntries(string(data))
	if err != nil {
		return nil, nil, err
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, bibRow(e))
	}
	return rows, slices.Clone(TemplateHeaders), nil
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)

var months = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

func bibRow(e bibEntry) Row {
	f := e.Fields
	row := Row{}
	set := func(col, v string) {
		if v = cleanBib(v); v != "" {
			row[col] = v
		}
	}

	set("title", f["title"])
	set("abstract", f["abstract"])
	set("journal", firstNonBlank(f["journal"], f["journaltitle"], f["booktitle"]))
	set("doi", f["doi"])
	set("download_url", f["url"])
	set("volume", f["volume"])
	set("issue", f["number"])
	set("pages", strings.ReplaceAll(strings.ReplaceAll(f["pages"], "--", "-"), "–", "-"))

	var authors []string
	for _, a := range splitBibAuthors(f["author"]) {
		if name := bibName(cleanBib(a)); name != "" {
			authors = append(authors, name)
		}
	}
	set("authors", strings.Join(authors, "; "))

	var kws []string
	for _, k := range strings.FieldsFunc(cleanBib(f["keywords"]), func(r rune) bool { return r == ',' || r == ';' }) {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	set("keywords", strings.Join(kws, "; "))

	set("publication_date", bibDate(cleanBib(f["date"]), cleanBib(f["year"]), cleanBib(f["month"])))
	return row
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// bibDate builds YYYY-MM-DD from a BibLaTeX date or a year and month. A
// missing month or day is the first.
func bibDate(date, year, month string) string {
	if isoDate.MatchString(date) {
		if len(date) == len("2006-01") {
			return date + "-01"
		}
		return date
	}
	if year == "" {
		return date
	}
	if len(year) != 4 {
		return year
	}
	mm := "01"
	if month != "" {
		key := strings.ToLower(month)
		if len(key) > 3 {
			key = key[:3]
		}
		if m, ok := months[key]; ok {
			mm = m
		} else if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= 12 {
			mm = fmt.Sprintf("%02d", n)
		}
	}
	return year + "-" + mm + "-01"
}

// splitBibAuthors splits an author list on "and" outside braces.
func splitBibAuthors(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ' ', '\t', '\n', '\r':
			if depth == 0 && i+5 <= len(s) && strings.EqualFold(s[i+1:i+4], "and") && isBibSpace(s[i+4]) {
				out = append(out, s[start:i])
				i += 4
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func isBibSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// bibName turns "Last, First" into "First Last" and "Last, Jr, First"
// into "First Last Jr".
func bibName(s string) string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 2:
		return strings.TrimSpace(parts[1] + " " + parts[0])
	case 3:
		return strings.TrimSpace(parts[2] + " " + parts[0] + " " + parts[1])
	}
	return s
}

var bibEscapes = strings.NewReplacer(`\&`, "&", `\%`, "%", `\_`, "_", `\$`, "$", `\#`, "#", "{", "", "}", "")

// cleanBib drops braces, unescapes common specials, and collapses
// whitespace.
func cleanBib(s string) string {
	return strings.Join(strings.Fields(bibEscapes.Replace(s)), " ")
}

// bibParser is a small recursive-descent reader over the whole input.
type bibParser struct {
	src string
	pos int
}

func parseBibEntries(src string) ([]bibEntry, error) {
	p := &bibParser{src: src}
	var out []bibEntry
	for {
		i := strings.IndexByte(p.src[p.pos:], '@')
		if i < 0 {
			return out, nil
		}
		p.pos += i + 1
		typ := strings.ToLower(p.ident())
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unexpected end of input after @%s", typ)
		}
		open := p.src[p.pos]
		if typ == "" || open != '{' && open != '(' {
			continue
		}
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}
		p.pos++

		switch typ {
		case "comment", "preamble", "string":
			if err := p.skipBlock(closer); err != nil {
				return nil, err
			}
			continue
		}
		e, err := p.entry(typ, closer)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

func (p *bibParser) eof() bool { return p.pos >= len(p.src) }

func (p *bibParser) errorf(format string, args ...any) error {
	line := 1 + strings.Count(p.src[:min(p.pos, len(p.src))], "\n")
	return fmt.Errorf("BibTeX line %d: %s", line, fmt.Sprintf(format, args...))
}

func (p *bibParser) skipSpace() {
	for !p.eof() && isBibSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *bibParser) ident() string {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(" \t\r\n{}(),=#\"@", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// skipBlock skips to the closer matching an already consumed opener.
func (p *bibParser) skipBlock(closer byte) error {
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch c := p.src[p.pos]; {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			p.pos++
			return nil
		}
	}
	return p.errorf("unterminated block")
}

func (p *bibParser) entry(typ string, closer byte) (bibEntry, error) {
	e := bibEntry{Type: typ, Fields: map[string]string{}}
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' && p.src[p.pos] != closer {
		p.pos++
	}
	e.Key = strings.TrimSpace(p.src[start:p.pos])

	for {
		p.skipSpace()
		if p.eof() {
			return e, p.errorf("unterminated entry %q", e.Key)
		}
		switch p.src[p.pos] {
		case closer:
			p.pos++
			return e, nil
		case ',':
			p.pos++
			continue
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return e, p.errorf("expected field name in entry %q", e.Key)
		}
		p.skipSpace()
		if p.eof() || p.src[p.pos] != '=' {
			return e, p.errorf("expected '=' after field %q in entry %q", name, e.Key)
		}
		p.pos++
		v, err := p.value(closer)
		if err != nil {
			return e, err
		}
		e.Fields[name] = v
	}
}

// value reads a field value: braced or quoted text, or a bare number or
// macro name, optionally concatenated with #.
func (p *bibParser) value(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("unexpected end of input in field value")
		}
		switch p.src[p.pos] {
		case '{':
			p.pos++
			s, err := p.until('}')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '"':
			p.pos++
			s, err := p.until('"')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			start := p.pos
			for !p.eof() && !isBibSpace(p.src[p.pos]) && p.src[p.pos] != ',' && p.src[p.pos] != '#' && p.src[p.pos] != closer {
				p.pos++
			}
			b.WriteString(p.src[start:p.pos])
		}
		p.skipSpace()
		if p.eof() || p.src[p.pos] != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

// until reads up to end at brace depth zero and consumes end. Nested
// braces are kept in the result.
func (p *bibParser) until(end byte) (string, error) {
	start, depth := p.pos, 0
	for ; !p.eof(); p.pos++ {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
		case c == end && depth == 0:
			s := p.src[start:p.pos]
			p.pos++
			return s, nil
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
	}
	return "", p.errorf("unterminated field value")
}
