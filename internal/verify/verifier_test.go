package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"certverify/internal/models"
	"certverify/internal/store"
)

func seededStore(t *testing.T, recs ...*models.CertificateRecord) *store.Memory {
	t.Helper()
	st := store.NewMemory()
	for _, r := range recs {
		_, err := st.Upsert(context.Background(), r)
		require.NoError(t, err)
	}
	return st
}

func TestVerifyByCertificateID(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "jh-uni-2022-0001",
		Name:          "Amit Kumar",
		FileHash:      "abc123",
	})
	v := New(st)

	res, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{CertificateID: "JH-UNI-2022-0001"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByCertificateID, res.MatchedBy)
	require.Equal(t, IntegrityUnknown, res.Integrity, "no artifact supplied")
	require.False(t, res.QRVerified)
	require.NotNil(t, res.Record)
	require.Equal(t, "jh-uni-2022-0001", res.Record.CertificateID)
}

func TestVerifyArtifactIntegrity(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "CERT-1",
		FileHash:      "abc123",
	})
	v := New(st)

	res, err := v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{CandidateID: "cert-1", ObservedHash: "abc123"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByCertificateID, res.MatchedBy)
	require.Equal(t, IntegrityMatch, res.Integrity)

	res, err = v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{CandidateID: "cert-1", ObservedHash: "def456"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, IntegrityMismatch, res.Integrity, "a tampered artifact still verifies existence")
}

func TestVerifyQRClaim(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "X1",
		FileHash:      "abc123",
	})
	v := New(st)

	res, err := v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{QRPayload: `{"certificate_id":"X1","file_hash":"abc123"}`},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByQR, res.MatchedBy)
	require.True(t, res.QRVerified)
}

func TestVerifyQRDisagreementDoesNotDowngrade(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "X1",
		FileHash:      "abc123",
	})
	v := New(st)

	// Explicit id wins; the QR claims a different certificate and digest.
	res, err := v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{
			CandidateID: "X1",
			QRPayload:   `{"certificate_id":"OTHER","file_hash":"ffff"}`,
		},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByCertificateID, res.MatchedBy)
	require.False(t, res.QRVerified, "disagreeing QR is reported, not fatal")
}

func TestVerifyQRNeverOverridesAbsence(t *testing.T) {
	v := New(store.NewMemory())

	res, err := v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{QRPayload: `{"certificate_id":"GHOST","file_hash":"abc123"}`},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictNotFound, res.Verdict)
	require.Equal(t, MatchedByNone, res.MatchedBy)
	require.False(t, res.QRVerified)
	require.Nil(t, res.Record)
}

func TestVerifyByFields(t *testing.T) {
	amit := &models.CertificateRecord{
		CertificateID: "A-1",
		Name:          "Amit Kumar",
		Course:        "B.Tech CSE",
	}
	st := seededStore(t, amit, &models.CertificateRecord{
		CertificateID: "B-2",
		Name:          "Binita Rao",
		Course:        "B.Tech CSE",
	})
	v := New(st)

	res, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Name: "amit  kumar", Course: "b.tech cse"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByFields, res.MatchedBy)
	require.Equal(t, "A-1", res.Record.CertificateID)

	// Zero candidates
	res, err = v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Name: "Nobody Here"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictNotFound, res.Verdict)
	require.False(t, res.Ambiguous)

	// Two candidates share the course: ambiguous, never silently picked
	res, err = v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Course: "B.Tech CSE"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictNotFound, res.Verdict)
	require.True(t, res.Ambiguous)
	require.Nil(t, res.Record)
}

func TestVerifyIDMissFallsThroughToFields(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "REAL-1",
		RollNumber:    "R-42",
	})
	v := New(st)

	res, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{CertificateID: "TYPO-1", RollNumber: "r 42"},
	})
	require.NoError(t, err)
	require.Equal(t, VerdictValid, res.Verdict)
	require.Equal(t, MatchedByFields, res.MatchedBy)
}

func TestVerifyIntegrityIndependentOfMatchPath(t *testing.T) {
	rec := &models.CertificateRecord{
		CertificateID: "P-1",
		Name:          "Only One",
		FileHash:      "abc123",
	}
	st := seededStore(t, rec)
	v := New(st)

	byID, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{CertificateID: "P-1", FileHash: "abc123"},
	})
	require.NoError(t, err)
	byFields, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Name: "Only One", FileHash: "abc123"},
	})
	require.NoError(t, err)

	require.NotEqual(t, byID.MatchedBy, byFields.MatchedBy)
	require.Equal(t, IntegrityMatch, byID.Integrity)
	require.Equal(t, IntegrityMatch, byFields.Integrity)
}

func TestVerifyDeterministic(t *testing.T) {
	st := seededStore(t, &models.CertificateRecord{
		CertificateID: "D-1",
		FileHash:      "abc123",
	})
	v := New(st)
	req := Request{Artifact: &ArtifactInput{
		CandidateID:  "d-1",
		ObservedHash: "abc123",
		QRPayload:    "certificate_id=D-1",
	}}

	first, err := v.Verify(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := v.Verify(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestVerifyMalformedRequests(t *testing.T) {
	v := New(store.NewMemory())

	_, err := v.Verify(context.Background(), Request{})
	require.ErrorIs(t, err, ErrMalformedRequest)

	_, err = v.Verify(context.Background(), Request{
		Artifact: &ArtifactInput{ObservedHash: "abc"},
		Fields:   &FieldsInput{CertificateID: "X"},
	})
	require.ErrorIs(t, err, ErrMalformedRequest)

	_, err = v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Name: "   "},
	})
	require.ErrorIs(t, err, ErrMalformedRequest)
}

// downStore simulates an unreachable record store.
type downStore struct{}

func (downStore) FindByCertificateID(context.Context, string) (*models.CertificateRecord, error) {
	return nil, store.ErrUnavailable
}
func (downStore) FindByNormalizedFields(context.Context, string, string, string) ([]models.CertificateRecord, error) {
	return nil, store.ErrUnavailable
}
func (downStore) Upsert(context.Context, *models.CertificateRecord) (bool, error) {
	return false, store.ErrUnavailable
}
func (downStore) List(context.Context, int, int) ([]models.CertificateRecord, int64, error) {
	return nil, 0, store.ErrUnavailable
}
func (downStore) Stats(context.Context) (store.Stats, error) {
	return store.Stats{}, store.ErrUnavailable
}
func (downStore) LogEvent(context.Context, *models.AuditEvent) error {
	return store.ErrUnavailable
}

func TestVerifyStoreUnavailableIsNotNotFound(t *testing.T) {
	v := New(downStore{})

	_, err := v.Verify(context.Background(), Request{
		Fields: &FieldsInput{CertificateID: "X1"},
	})
	require.ErrorIs(t, err, store.ErrUnavailable)

	_, err = v.Verify(context.Background(), Request{
		Fields: &FieldsInput{Name: "Amit"},
	})
	require.ErrorIs(t, err, store.ErrUnavailable)
}
