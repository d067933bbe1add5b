package naming

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/model"
)

// ErrBadRows reports a row list in neither the JSON nor the legacy form.
var ErrBadRows = errors.New("unrecognized pattern rows")

// Token is one pattern entry.
type Token struct {
	// ID is the stable parameter id (BIP:<TOKEN> or the display name).
	ID     string `json:"Name"`
	Prefix string `json:"Prefix"`
	Suffix string `json:"Suffix"`
	// DisplayName is the label shown in pickers.
	DisplayName string `json:"DisplayName,omitempty"`
}

// Build renders rows as a pattern string: prefix + "{" + id + "}" + suffix
// for each token.
func Build(rows []Token) string {
	var b strings.Builder
	for _, t := range rows {
		b.WriteString(t.Prefix)
		b.WriteByte('{')
		b.WriteString(t.ID)
		b.WriteByte('}')
		b.WriteString(t.Suffix)
	}
	return b.String()
}

// Resolve evaluates rows against src. Missing parameters resolve to "".
func Resolve(rows []Token, src model.ParamSource) string {
	var b strings.Builder
	for _, t := range rows {
		b.WriteString(t.Prefix)
		if src != nil {
			if p, ok := src.Param(t.ID); ok {
				b.WriteString(p.String())
			}
		}
		b.WriteString(t.Suffix)
	}
	return b.String()
}

// FileName resolves rows against src and sanitizes the result. When rows
// are empty or resolve to blank, fallback is used instead.
func FileName(rows []Token, src model.ParamSource, fallback string) string {
	name := ""
	if len(rows) > 0 {
		name = strings.TrimSpace(Resolve(rows, src))
	}
	if name == "" {
		name = fallback
	}
	return ioutils.SanitizeFileName(name)
}

// ParsePattern recovers rows from a pattern string. Literal text before the
// first token becomes its prefix; any other literal text becomes the suffix
// of the preceding token. An unterminated "{" is literal text.
func ParsePattern(pattern string) []Token {
	var (
		rows    []Token
		literal strings.Builder
	)

	for i := 0; i < len(pattern); {
		if pattern[i] == '{' {
			if end := strings.IndexByte(pattern[i+1:], '}'); end >= 0 {
				id := pattern[i+1 : i+1+end]
				if len(rows) == 0 {
					rows = append(rows, Token{ID: id, Prefix: literal.String()})
				} else {
					rows[len(rows)-1].Suffix = literal.String()
					rows = append(rows, Token{ID: id})
				}
				literal.Reset()
				i += end + 2
				continue
			}
		}
		literal.WriteByte(pattern[i])
		i++
	}

	if len(rows) > 0 {
		rows[len(rows)-1].Suffix = literal.String()
	}
	return rows
}

// legacyRow matches one row of the legacy encoding.
var legacyRow = regexp.MustCompile(
	`"name"\s*:\s*("(?:[^"\\]|\\.)*")\s*,\s*"prefixe"\s*:\s*("(?:[^"\\]|\\.)*")\s*,\s*"suffixe"\s*:\s*("(?:[^"\\]|\\.)*")`)

// DecodeRows parses a persisted row list. JSON is tried first, then the
// legacy form. A blank string decodes to no rows.
func DecodeRows(s string) ([]Token, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var rows []Token
	if err := json.Unmarshal([]byte(s), &rows); err == nil {
		return rows, nil
	}

	matches := legacyRow.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		if s == "[]" || s == "[ ]" {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %.40q", ErrBadRows, s)
	}

	rows = make([]Token, 0, len(matches))
	for _, m := range matches {
		id, err1 := strconv.Unquote(m[1])
		prefix, err2 := strconv.Unquote(m[2])
		suffix, err3 := strconv.Unquote(m[3])
		if err := errors.Join(err1, err2, err3); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRows, err)
		}
		rows = append(rows, Token{ID: id, Prefix: prefix, Suffix: suffix})
	}
	return rows, nil
}

// EncodeRows writes rows as a JSON list of {Name, Prefix, Suffix}.
func EncodeRows(rows []Token) string {
	out := make([]Token, len(rows))
	for i, t := range rows {
		out[i] = Token{ID: t.ID, Prefix: t.Prefix, Suffix: t.Suffix}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// EncodeLegacy writes rows in the legacy single-line form.
func EncodeLegacy(rows []Token) string {
	parts := make([]string, len(rows))
	for i, t := range rows {
		parts[i] = fmt.Sprintf(`[ "name": %s, "prefixe": %s, "suffixe": %s ]`,
			strconv.Quote(t.ID), strconv.Quote(t.Prefix), strconv.Quote(t.Suffix))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
