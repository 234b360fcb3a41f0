// Package extract pulls candidate identity fields out of raw certificate text.
// Extraction is heuristic glue around the verification engine: its output is
// treated as hints, never as authoritative data.
package extract

import (
	"regexp"
	"strings"
)

// Fields holds the identity fields recognized in document text. Any of them
// may be empty.
type Fields struct {
	CertificateID string `json:"certificate_id,omitempty"`
	Name          string `json:"name,omitempty"`
	RollNumber    string `json:"roll_number,omitempty"`
	Course        string `json:"course,omitempty"`
	Issuer        string `json:"issuer,omitempty"`
}

// Empty reports whether no field was recognized.
func (f Fields) Empty() bool {
	return f.CertificateID == "" && f.Name == "" && f.RollNumber == "" && f.Course == "" && f.Issuer == ""
}

var (
	certIDRe = regexp.MustCompile(`(?i)(?:certificate\s*id|cert(?:ificate)?\s*no\.?|serial\s*no\.?)[\s:]*([A-Za-z0-9\-/]+)`)
	rollRe   = regexp.MustCompile(`(?i)(?:roll\s*no\.?|enrollment\s*no\.?|reg(?:istration)?\s*no\.?)[\s:]*([A-Za-z0-9\-/]+)`)
	nameRe   = regexp.MustCompile(`(?i)(?:student\s*name|candidate|name)\s*[:\-\s]*([A-Za-z][A-Za-z ,\-.']+)`)
	courseRe = regexp.MustCompile(`(?i)(?:course|programme|degree)\s*[:\-\s]*([A-Za-z0-9 &\-.]+)`)
)

// FromText runs regex extraction over OCR text. Labels vary wildly between
// institutions, so each field uses a small alternation of common spellings.
func FromText(text string) Fields {
	var f Fields
	if m := certIDRe.FindStringSubmatch(text); len(m) == 2 {
		f.CertificateID = strings.TrimSpace(m[1])
	}
	if m := rollRe.FindStringSubmatch(text); len(m) == 2 {
		f.RollNumber = strings.TrimSpace(m[1])
	}
	if m := nameRe.FindStringSubmatch(text); len(m) == 2 {
		f.Name = strings.TrimSpace(m[1])
	}
	if m := courseRe.FindStringSubmatch(text); len(m) == 2 {
		f.Course = strings.TrimSpace(m[1])
	}
	f.Issuer = issuerLine(text)
	return f
}

// issuerLine picks the longest line mentioning an institution keyword as the
// likely issuer name.
func issuerLine(text string) string {
	keywords := []string{"university", "institute", "college", "academy", "board"}
	best := ""
	for _, ln := range strings.Split(text, "\n") {
		l := strings.TrimSpace(ln)
		ll := strings.ToLower(l)
		for _, kw := range keywords {
			if strings.Contains(ll, kw) {
				if len(l) > len(best) {
					best = l
				}
				break
			}
		}
	}
	return best
}
