package verify

import (
	"context"
	"errors"
	"strings"

	"certverify/internal/models"
	"certverify/internal/normalize"
	"certverify/internal/store"
)

// resolution is the outcome of record resolution. A nil record with ambiguous
// set means the field query matched more than one candidate; the resolver never
// silently picks one.
type resolution struct {
	record    *models.CertificateRecord
	matchedBy MatchedBy
	ambiguous bool
}

// resolve locates at most one record for the given candidate identifiers.
// Precedence: an explicit certificate id, then a QR-claimed id, then a
// normalized-field search. An id lookup miss falls through to the field
// search.
func resolve(ctx context.Context, st store.Store, certID, qrClaimedID, name, rollNumber, course string) (resolution, error) {
	effectiveID := strings.TrimSpace(certID)
	via := MatchedByCertificateID
	if effectiveID == "" && strings.TrimSpace(qrClaimedID) != "" {
		effectiveID = strings.TrimSpace(qrClaimedID)
		via = MatchedByQR
	}

	if effectiveID != "" {
		rec, err := st.FindByCertificateID(ctx, effectiveID)
		switch {
		case err == nil:
			return resolution{record: rec, matchedBy: via}, nil
		case errors.Is(err, store.ErrNotFound):
			// fall through to the field search
		default:
			return resolution{}, err
		}
	}

	nName := normalize.Field(name)
	nRoll := normalize.Field(rollNumber)
	nCourse := normalize.Field(course)
	if nName == "" && nRoll == "" && nCourse == "" {
		return resolution{}, nil
	}

	candidates, err := st.FindByNormalizedFields(ctx, nName, nRoll, nCourse)
	if err != nil {
		return resolution{}, err
	}
	switch len(candidates) {
	case 0:
		return resolution{}, nil
	case 1:
		return resolution{record: &candidates[0], matchedBy: MatchedByFields}, nil
	default:
		// Multiple indistinguishable candidates: report absence, flag ambiguity.
		return resolution{ambiguous: true}, nil
	}
}
