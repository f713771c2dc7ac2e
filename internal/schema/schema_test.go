package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/reconcile"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestDecode_LegacyExport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "legacy_export.json"))
	require.NoError(t, err)

	res := newValidator(t).Decode(data, RepairOptions{IDs: ids.NewSequence("id")})

	valid, ok := res.(Valid)
	require.True(t, ok, "expected Valid, got %#v", res)
	s := valid.Snapshot

	require.Len(t, s.Speakers, 2)
	assert.Equal(t, "Jean Dupont", s.Speakers[0].Nom)
	assert.Equal(t, "s1", s.Speakers[0].ID)
	assert.Equal(t, "id-1", s.Speakers[1].ID)
	assert.Equal(t, model.DefaultCongregation, s.Speakers[1].Congregation)
	assert.NotNil(t, s.Speakers[1].TalkHistory)

	require.Len(t, s.Hosts, 2)
	assert.Equal(t, "id-2", s.Hosts[0].ID)

	require.Len(t, s.Visits, 2)
	assert.Equal(t, "2025-01-02T08:00:00.000Z", s.Visits[0].CommunicationStatus["confirmation"]["speaker"])
	assert.Empty(t, s.Visits[1].VisitID, "visit ids are assigned by the merge")
	assert.Empty(t, s.Visits[1].Host, "visit fields are left for the merge to resolve")

	require.Len(t, s.ArchivedVisits, 1)
	require.NotNil(t, s.ArchivedVisits[0].Feedback)
	assert.Equal(t, 5, s.ArchivedVisits[0].Feedback.Rating)

	require.Len(t, s.PublicTalks, 2)
	assert.True(t, s.PublicTalks[0].Number.IsNumeric())
	assert.Equal(t, "CO", s.PublicTalks[1].Number.String())

	require.NotNil(t, s.CongregationProfile)
	assert.Nil(t, s.CongregationProfile.Latitude)

	var got []string
	for _, w := range valid.Warnings {
		got = append(got, w.Code)
	}
	assert.Equal(t, []string{WarnDroppedSpeaker, WarnDroppedVisit, WarnDuplicateKey}, got)
}

func TestValidate_MissingSections(t *testing.T) {
	errs := newValidator(t).Validate([]byte(`{"speakers": [], "hosts": null}`))

	require.Len(t, errs, 2)
	assert.Equal(t, "hosts", errs[0].Field)
	assert.Equal(t, "visits", errs[1].Field)
	assert.Equal(t, []string{ErrCodeMissingSection, ErrCodeMissingSection}, codes(errs))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"not json", `{"speakers": [`, ErrCodeSyntax},
		{"array at top level", `[]`, ErrCodeSyntax},
		{"speakers not a list", `{"speakers": {}, "hosts": [], "visits": []}`, ErrCodeSchemaViolation},
		{"numeric name", `{"speakers": [{"nom": 42}], "hosts": [], "visits": []}`, ErrCodeSchemaViolation},
		{"bad date", `{"speakers": [], "hosts": [], "visits": [{"nom": "A", "visitDate": "11/01/2025"}]}`, ErrCodeSchemaViolation},
		{"unknown status", `{"speakers": [], "hosts": [], "visits": [{"nom": "A", "visitDate": "2025-01-11", "status": "done"}]}`, ErrCodeSchemaViolation},
		{"float talk number", `{"speakers": [], "hosts": [], "visits": [], "publicTalks": [{"number": 1.5}]}`, ErrCodeSchemaViolation},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Validate([]byte(tt.input))
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestValidate_UnknownKeysTolerated(t *testing.T) {
	errs := newValidator(t).Validate([]byte(`{"speakers": [{"nom": "A", "futureField": 1}], "hosts": [], "visits": [], "speakerMessages": []}`))
	assert.Empty(t, errs)
}

func TestDecode_InvalidIsMalformedImport(t *testing.T) {
	res := newValidator(t).Decode([]byte(`{}`), RepairOptions{})

	snap, warnings, err := Resolve(res)
	assert.Nil(t, snap)
	assert.Nil(t, warnings)
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrMalformedImport)

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Errors, 3)
}

func TestRepair_DoesNotModifyInput(t *testing.T) {
	in := &model.Snapshot{
		Speakers: []model.Speaker{{Nom: " A "}},
		Hosts:    []model.Host{},
		Visits:   []model.Visit{},
	}

	out, warnings := Repair(in, RepairOptions{IDs: ids.NewSequence("x")})

	assert.Empty(t, warnings)
	assert.Equal(t, "A", out.Speakers[0].Nom)
	assert.Equal(t, " A ", in.Speakers[0].Nom)
	assert.Empty(t, in.Speakers[0].ID)
}
