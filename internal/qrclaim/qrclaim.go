// Package qrclaim decodes raw QR payload strings into structured claims.
//
// Certificates in the wild carry QR codes in several shapes: a JSON object, a
// query string, a bare certificate id, or something purely decorative. Parsing
// therefore never fails; a payload that fits no known shape simply yields an
// empty claim.
package qrclaim

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Claim is the structured content of a certificate QR payload. Either field
// may be empty.
type Claim struct {
	CertificateID string
	FileHash      string
}

// Empty reports whether the claim carries no usable data.
func (c Claim) Empty() bool {
	return c.CertificateID == "" && c.FileHash == ""
}

var (
	idKeys   = []string{"certificate_id", "cert_id", "id"}
	hashKeys = []string{"file_hash", "hash", "digest"}
)

// Parse decodes raw into a Claim. Strategies are tried in a fixed order: JSON
// object, query string, bare token. The first strategy that yields usable data
// wins.
func Parse(raw string) Claim {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claim{}
	}
	if c, ok := parseJSON(raw); ok {
		return c
	}
	if c, ok := parseQuery(raw); ok {
		return c
	}
	return parseBareToken(raw)
}

func parseJSON(raw string) (Claim, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return Claim{}, false
	}
	var c Claim
	for _, k := range idKeys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			c.CertificateID = strings.TrimSpace(s)
			break
		}
	}
	for _, k := range hashKeys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			c.FileHash = strings.TrimSpace(s)
			break
		}
	}
	return c, !c.Empty()
}

func parseQuery(raw string) (Claim, bool) {
	if !strings.Contains(raw, "=") {
		return Claim{}, false
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Claim{}, false
	}
	var c Claim
	for _, k := range idKeys {
		if s := strings.TrimSpace(values.Get(k)); s != "" {
			c.CertificateID = s
			break
		}
	}
	for _, k := range hashKeys {
		if s := strings.TrimSpace(values.Get(k)); s != "" {
			c.FileHash = s
			break
		}
	}
	return c, !c.Empty()
}

// parseBareToken treats the whole payload as a claimed certificate id, but
// only when it looks like a single opaque token rather than structure the
// earlier strategies failed to make sense of.
func parseBareToken(raw string) Claim {
	if strings.ContainsAny(raw, "=&{}") || strings.ContainsAny(raw, " \t\r\n") {
		return Claim{}
	}
	return Claim{CertificateID: raw}
}
