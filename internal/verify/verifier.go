package verify

import (
	"context"
	"strings"

	"certverify/internal/qrclaim"
	"certverify/internal/store"
)

// Verifier is the verdict assembler. It orchestrates QR parsing, record
// resolution and integrity comparison for a single request. Safe for
// concurrent use; all state is the injected store.
type Verifier struct {
	store store.Store
}

func New(st store.Store) *Verifier {
	return &Verifier{store: st}
}

// Verify processes one request to one terminal result. Only structurally
// invalid requests and store failures escape as errors; every other condition,
// including an unreadable QR or an absent digest, resolves into a well-formed
// Result.
func (v *Verifier) Verify(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	var (
		claim    qrclaim.Claim
		certID   string
		observed string
		name     string
		roll     string
		course   string
	)
	if a := req.Artifact; a != nil {
		claim = qrclaim.Parse(a.QRPayload)
		certID = a.CandidateID
		observed = a.ObservedHash
		name, roll, course = a.Name, a.RollNumber, a.Course
	} else {
		f := req.Fields
		certID = f.CertificateID
		observed = f.FileHash
		name, roll, course = f.Name, f.RollNumber, f.Course
	}

	res, err := resolve(ctx, v.store, certID, claim.CertificateID, name, roll, course)
	if err != nil {
		return Result{}, err
	}

	if res.record == nil {
		return Result{
			Verdict:      VerdictNotFound,
			MatchedBy:    MatchedByNone,
			Integrity:    IntegrityUnknown,
			Ambiguous:    res.ambiguous,
			ObservedHash: observed,
		}, nil
	}

	out := Result{
		Verdict:      VerdictValid,
		MatchedBy:    res.matchedBy,
		Record:       res.record,
		ObservedHash: observed,
	}
	out.Integrity = CompareDigests(observed, res.record.FileHash)

	// A QR claim corroborates the match when it names the same certificate or
	// the same digest. A disagreeing claim is reported, not folded into the
	// verdict.
	if !claim.Empty() {
		idAgrees := claim.CertificateID != "" &&
			strings.EqualFold(strings.TrimSpace(claim.CertificateID), strings.TrimSpace(res.record.CertificateID))
		hashAgrees := claim.FileHash != "" &&
			CompareDigests(claim.FileHash, res.record.FileHash) == IntegrityMatch
		out.QRVerified = idAgrees || hashAgrees
	}

	return out, nil
}
