package reactive

import (
	"context"
	"testing"

	"github.com/yungbote/academicworld-backend/internal/apperr"
	"github.com/yungbote/academicworld-backend/internal/logger"
	"github.com/yungbote/academicworld-backend/internal/types"
)

type stubRelational struct {
	universities []string
	faculty      map[string][]types.FacultyOption
	publications map[int64][]types.PublicationOption
	addErr       error
	addCalls     int
}

func (s *stubRelational) CitationRanking(ctx context.Context, university string) ([]types.CitationRank, error) {
	return []types.CitationRank{{Faculty: "Ada Lovelace", TotalCitations: 42}}, nil
}

func (s *stubRelational) KeywordScoreRanking(ctx context.Context, keywords []string) (types.KeywordScoreResult, error) {
	if len(keywords) > 0 && keywords[0] == "no-such-keyword" {
		return types.KeywordScoreResult{Kind: types.KeywordScoreNoMatch}, nil
	}
	return types.KeywordScoreResult{Kind: types.KeywordScoreRows, Rows: []types.UniversityScore{{University: "CMU", TotalScore: 1.5}}}, nil
}

func (s *stubRelational) KeywordSuggestions(ctx context.Context, prefix string) ([]string, error) {
	return []string{prefix + "work"}, nil
}

func (s *stubRelational) AllKeywords(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubRelational) AllUniversities(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.universities))
	copy(out, s.universities)
	return out, nil
}

func (s *stubRelational) FacultyByUniversity(ctx context.Context, university string) ([]types.FacultyOption, error) {
	return s.faculty[university], nil
}

func (s *stubRelational) PublicationsByFaculty(ctx context.Context, facultyID int64) ([]types.PublicationOption, error) {
	return s.publications[facultyID], nil
}

func (s *stubRelational) AddUniversity(ctx context.Context, name string, photoURL *string) (int64, error) {
	s.addCalls++
	if s.addErr != nil {
		return 0, s.addErr
	}
	s.universities = append(s.universities, name)
	return int64(len(s.universities)), nil
}

func (s *stubRelational) DeleteUniversity(ctx context.Context, name string) error {
	for i, u := range s.universities {
		if u == name {
			s.universities = append(s.universities[:i], s.universities[i+1:]...)
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "no university named %q", name)
}

func (s *stubRelational) AddPublication(ctx context.Context, facultyID int64, fields types.PublicationPatch) (int64, error) {
	return 1, nil
}

func (s *stubRelational) UpdatePublication(ctx context.Context, publicationID int64, patch types.PublicationPatch) error {
	return nil
}

func (s *stubRelational) DeletePublicationLink(ctx context.Context, publicationID int64) error {
	return nil
}

func (s *stubRelational) GetPublication(ctx context.Context, publicationID int64) (*types.Publication, error) {
	return &types.Publication{ID: publicationID, Title: "Reactive Dataflow"}, nil
}

type stubDocument struct{}

func (stubDocument) PublicationsOverTime(ctx context.Context, universities []string, yearRange *types.YearRange) ([]types.PublicationCount, error) {
	return []types.PublicationCount{{University: "CMU", Year: 2020, Count: 3}}, nil
}

func (stubDocument) AllUniversities(ctx context.Context) ([]string, error) { return nil, nil }

func (stubDocument) PublicationYearRange(ctx context.Context) (types.YearRange, error) {
	return types.YearRange{}, nil
}

type stubGraph struct{}

func (stubGraph) KeywordRelevantCitation(ctx context.Context, keyword string) ([]types.InstituteKRC, error) {
	return []types.InstituteKRC{{University: "CMU", TotalKRC: 99.5}}, nil
}

func testDashboard(t *testing.T, rel *stubRelational) *Dashboard {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	d, err := NewDashboard(rel, stubDocument{}, stubGraph{}, log)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return d
}

func TestDashboardStartSettlesAllWidgets(t *testing.T) {
	d := testDashboard(t, &stubRelational{universities: []string{"CMU"}})
	for _, status := range d.Engine().Snapshot() {
		if status.State != "settled" {
			t.Fatalf("node %s not settled after start: %s", status.Name, status.State)
		}
	}
	options, err := d.UniversityOptions()
	if err != nil {
		t.Fatalf("university options: %v", err)
	}
	if len(options) != 1 || options[0] != "CMU" {
		t.Fatalf("expected [CMU], got %v", options)
	}
}

func TestSelectUniversityCascadesToFacultyAndResetsBelow(t *testing.T) {
	rel := &stubRelational{
		universities: []string{"CMU"},
		faculty: map[string][]types.FacultyOption{
			"CMU": {{ID: 7, Name: "Ada Lovelace"}},
		},
		publications: map[int64][]types.PublicationOption{
			7: {{ID: 101, Title: "Reactive Dataflow"}},
		},
	}
	d := testDashboard(t, rel)
	ctx := context.Background()

	if err := d.SelectUniversity(ctx, "CMU"); err != nil {
		t.Fatalf("select university: %v", err)
	}
	faculty, err := d.FacultyOptions()
	if err != nil {
		t.Fatalf("faculty options: %v", err)
	}
	if len(faculty) != 1 || faculty[0].ID != 7 {
		t.Fatalf("expected Ada as the only option, got %v", faculty)
	}

	if err := d.SelectFaculty(ctx, 7); err != nil {
		t.Fatalf("select faculty: %v", err)
	}
	pubs, err := d.PublicationOptions()
	if err != nil {
		t.Fatalf("publication options: %v", err)
	}
	if len(pubs) != 1 || pubs[0].ID != 101 {
		t.Fatalf("expected publication 101, got %v", pubs)
	}

	if err := d.SelectPublication(ctx, 101); err != nil {
		t.Fatalf("select publication: %v", err)
	}
	controls, err := d.EditControls()
	if err != nil {
		t.Fatalf("edit controls: %v", err)
	}
	if !controls.Visible || controls.Publication == nil || controls.Publication.ID != 101 {
		t.Fatalf("expected visible controls for publication 101, got %+v", controls)
	}

	// Reselecting the university collapses the chain below it.
	if err := d.SelectUniversity(ctx, "CMU"); err != nil {
		t.Fatalf("reselect university: %v", err)
	}
	pubs, err = d.PublicationOptions()
	if err != nil {
		t.Fatalf("publication options after reset: %v", err)
	}
	if len(pubs) != 0 {
		t.Fatalf("expected empty publication options after reset, got %v", pubs)
	}
	controls, err = d.EditControls()
	if err != nil {
		t.Fatalf("edit controls after reset: %v", err)
	}
	if controls.Visible {
		t.Fatalf("edit controls should hide when selection resets")
	}
}

func TestAddUniversityRefreshesOptions(t *testing.T) {
	rel := &stubRelational{universities: []string{"CMU"}}
	d := testDashboard(t, rel)
	ctx := context.Background()

	var refreshed []string
	d.Engine().OnRefresh(func(counter string, value int64, seq uint64) {
		refreshed = append(refreshed, counter)
	})

	if err := d.AddUniversity(ctx, AddUniversityRequest{Name: "UIUC"}); err != nil {
		t.Fatalf("add university: %v", err)
	}
	options, err := d.UniversityOptions()
	if err != nil {
		t.Fatalf("university options: %v", err)
	}
	if len(options) != 2 || options[1] != "UIUC" {
		t.Fatalf("expected refreshed options with UIUC, got %v", options)
	}
	if len(refreshed) != 1 || refreshed[0] != NodeAddRefresh {
		t.Fatalf("expected one add-refresh bump, got %v", refreshed)
	}
}

func TestFailedMutationLeavesWidgetsUntouched(t *testing.T) {
	rel := &stubRelational{
		universities: []string{"CMU"},
		addErr:       apperr.Newf(apperr.CodeDuplicateEntry, "university already exists"),
	}
	d := testDashboard(t, rel)

	err := d.AddUniversity(context.Background(), AddUniversityRequest{Name: "CMU"})
	if !apperr.IsDuplicateEntry(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if rel.addCalls != 1 {
		t.Fatalf("expected exactly one store call, got %d", rel.addCalls)
	}
	options, optErr := d.UniversityOptions()
	if optErr != nil {
		t.Fatalf("university options: %v", optErr)
	}
	if len(options) != 1 {
		t.Fatalf("failed mutation must not refresh options, got %v", options)
	}
}

func TestKeywordFilterNoMatchSurfacesAsTaggedResult(t *testing.T) {
	d := testDashboard(t, &stubRelational{universities: []string{"CMU"}})

	if err := d.SetKeywordFilter(context.Background(), []string{"no-such-keyword"}); err != nil {
		t.Fatalf("set keyword filter: %v", err)
	}
	result, err := d.KeywordScores()
	if err != nil {
		t.Fatalf("keyword scores: %v", err)
	}
	if result.Kind != types.KeywordScoreNoMatch {
		t.Fatalf("expected no-match kind, got %v", result.Kind)
	}
}
