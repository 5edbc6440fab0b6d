package reactive

import (
	"context"
	"fmt"

	"github.com/yungbote/academicworld-backend/internal/aggregate"
	"github.com/yungbote/academicworld-backend/internal/logger"
	"github.com/yungbote/academicworld-backend/internal/services"
	"github.com/yungbote/academicworld-backend/internal/types"
)

// Node names for the dashboard graph. Widgets are derived nodes; the
// refresh counters partition invalidation by mutation family so a
// publication edit does not recompute university-level widgets.
const (
	NodeKeywordInput       = "keyword-input"
	NodeKeywordFilter      = "keyword-filter"
	NodeUniversityFilter   = "university-filter"
	NodeYearFilter         = "year-filter"
	NodeSelectedUniversity = "selected-university"
	NodeSelectedFaculty    = "selected-faculty"
	NodeSelectedPub        = "selected-publication"

	NodeAddRefresh    = "add-refresh"
	NodeDeleteRefresh = "delete-refresh"
	NodePubRefresh    = "pub-refresh"

	NodeCitationRanking   = "citation-ranking"
	NodeKeywordScores     = "keyword-scores"
	NodeKRC               = "keyword-relevant-citation"
	NodePubsOverTime      = "publications-over-time"
	NodeUniversityOptions = "university-options"
	NodeFacultyOptions    = "faculty-options"
	NodePubOptions        = "publication-options"
	NodeEditControls      = "edit-controls"
	NodeSuggestions       = "keyword-suggestions"

	MutationAddUniversity  = "add-university"
	MutationDelUniversity  = "delete-university"
	MutationAddPublication = "add-publication"
	MutationUpdatePub      = "update-publication"
	MutationDeletePubLink  = "delete-publication-link"
)

// EditControls mirrors the publication editor's visibility: hidden until a
// publication is selected, carrying the current row so the form can prefill.
type EditControls struct {
	Visible     bool               `json:"visible"`
	Publication *types.Publication `json:"publication,omitempty"`
}

type AddUniversityRequest struct {
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

type AddPublicationRequest struct {
	FacultyID int64                  `json:"faculty_id"`
	Fields    types.PublicationPatch `json:"fields"`
}

type UpdatePublicationRequest struct {
	PublicationID int64                  `json:"publication_id"`
	Patch         types.PublicationPatch `json:"patch"`
}

// Dashboard binds the widget dependency graph to the three query services.
type Dashboard struct {
	engine     *Engine
	relational services.RelationalService
	document   services.DocumentService
	graph      services.GraphService
	log        *logger.Logger
}

func NewDashboard(
	relational services.RelationalService,
	document services.DocumentService,
	graph services.GraphService,
	baseLog *logger.Logger,
) (*Dashboard, error) {
	d := &Dashboard{
		engine:     NewEngine(baseLog),
		relational: relational,
		document:   document,
		graph:      graph,
		log:        baseLog.With("component", "Dashboard"),
	}
	if err := d.build(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dashboard) build() error {
	e := d.engine

	inputs := []struct {
		name    string
		initial any
	}{
		{NodeKeywordInput, ""},
		{NodeKeywordFilter, []string(nil)},
		{NodeUniversityFilter, []string(nil)},
		{NodeYearFilter, (*types.YearRange)(nil)},
		{NodeSelectedUniversity, ""},
		{NodeSelectedFaculty, int64(0)},
		{NodeSelectedPub, int64(0)},
	}
	for _, in := range inputs {
		if err := e.AddInput(in.name, in.initial); err != nil {
			return err
		}
	}
	for _, counter := range []string{NodeAddRefresh, NodeDeleteRefresh, NodePubRefresh} {
		if err := e.AddCounter(counter); err != nil {
			return err
		}
	}

	derived := []struct {
		name    string
		deps    []string
		compute ComputeFunc
	}{
		{NodeCitationRanking, []string{NodeSelectedUniversity, NodePubRefresh}, d.computeCitationRanking},
		{NodeKeywordScores, []string{NodeKeywordFilter, NodeAddRefresh, NodeDeleteRefresh}, d.computeKeywordScores},
		{NodeKRC, []string{NodeKeywordInput}, d.computeKRC},
		{NodePubsOverTime, []string{NodeUniversityFilter, NodeYearFilter, NodePubRefresh}, d.computePubsOverTime},
		{NodeUniversityOptions, []string{NodeAddRefresh, NodeDeleteRefresh}, d.computeUniversityOptions},
		{NodeFacultyOptions, []string{NodeSelectedUniversity, NodeAddRefresh, NodeDeleteRefresh}, d.computeFacultyOptions},
		{NodePubOptions, []string{NodeSelectedFaculty, NodePubRefresh}, d.computePubOptions},
		{NodeEditControls, []string{NodeSelectedPub, NodePubRefresh}, d.computeEditControls},
		{NodeSuggestions, []string{NodeKeywordInput}, d.computeSuggestions},
	}
	for _, n := range derived {
		if err := e.AddDerived(n.name, n.deps, n.compute); err != nil {
			return err
		}
	}

	mutations := []struct {
		name     string
		counters []string
		mutate   MutationFunc
	}{
		{MutationAddUniversity, []string{NodeAddRefresh}, d.mutateAddUniversity},
		{MutationDelUniversity, []string{NodeDeleteRefresh}, d.mutateDeleteUniversity},
		{MutationAddPublication, []string{NodePubRefresh}, d.mutateAddPublication},
		{MutationUpdatePub, []string{NodePubRefresh}, d.mutateUpdatePublication},
		{MutationDeletePubLink, []string{NodePubRefresh}, d.mutateDeletePublicationLink},
	}
	for _, m := range mutations {
		if err := e.AddMutation(m.name, m.counters, m.mutate); err != nil {
			return err
		}
	}

	return e.Finalize()
}

// Start settles every widget so the first render has data.
func (d *Dashboard) Start(ctx context.Context) error {
	return d.engine.Prime(ctx)
}

func (d *Dashboard) Engine() *Engine { return d.engine }

// --- derived computes ---

func (d *Dashboard) computeCitationRanking(ctx context.Context, deps map[string]any) (any, error) {
	university, _ := deps[NodeSelectedUniversity].(string)
	if university == "" {
		return aggregate.FromCitationRanking(nil), nil
	}
	rows, err := d.relational.CitationRanking(ctx, university)
	if err != nil {
		return nil, err
	}
	return aggregate.FromCitationRanking(rows), nil
}

func (d *Dashboard) computeKeywordScores(ctx context.Context, deps map[string]any) (any, error) {
	keywords, _ := deps[NodeKeywordFilter].([]string)
	result, err := d.relational.KeywordScoreRanking(ctx, keywords)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dashboard) computeKRC(ctx context.Context, deps map[string]any) (any, error) {
	keyword, _ := deps[NodeKeywordInput].(string)
	if keyword == "" {
		return aggregate.FromKRC(nil), nil
	}
	rows, err := d.graph.KeywordRelevantCitation(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return aggregate.FromKRC(rows), nil
}

func (d *Dashboard) computePubsOverTime(ctx context.Context, deps map[string]any) (any, error) {
	universities, _ := deps[NodeUniversityFilter].([]string)
	yearRange, _ := deps[NodeYearFilter].(*types.YearRange)
	rows, err := d.document.PublicationsOverTime(ctx, universities, yearRange)
	if err != nil {
		return nil, err
	}
	return aggregate.FromPublicationsOverTime(rows), nil
}

func (d *Dashboard) computeUniversityOptions(ctx context.Context, deps map[string]any) (any, error) {
	return d.relational.AllUniversities(ctx)
}

func (d *Dashboard) computeFacultyOptions(ctx context.Context, deps map[string]any) (any, error) {
	university, _ := deps[NodeSelectedUniversity].(string)
	if university == "" {
		return []types.FacultyOption{}, nil
	}
	return d.relational.FacultyByUniversity(ctx, university)
}

func (d *Dashboard) computePubOptions(ctx context.Context, deps map[string]any) (any, error) {
	facultyID, _ := deps[NodeSelectedFaculty].(int64)
	if facultyID == 0 {
		return []types.PublicationOption{}, nil
	}
	return d.relational.PublicationsByFaculty(ctx, facultyID)
}

func (d *Dashboard) computeEditControls(ctx context.Context, deps map[string]any) (any, error) {
	pubID, _ := deps[NodeSelectedPub].(int64)
	if pubID == 0 {
		return EditControls{}, nil
	}
	pub, err := d.relational.GetPublication(ctx, pubID)
	if err != nil {
		return nil, err
	}
	return EditControls{Visible: true, Publication: pub}, nil
}

func (d *Dashboard) computeSuggestions(ctx context.Context, deps map[string]any) (any, error) {
	term, _ := deps[NodeKeywordInput].(string)
	if term == "" {
		return []string{}, nil
	}
	return d.relational.KeywordSuggestions(ctx, term)
}

// --- mutations ---

func (d *Dashboard) mutateAddUniversity(ctx context.Context, payload any) error {
	req, ok := payload.(AddUniversityRequest)
	if !ok {
		return fmt.Errorf("add-university expects AddUniversityRequest, got %T", payload)
	}
	_, err := d.relational.AddUniversity(ctx, req.Name, req.PhotoURL)
	return err
}

func (d *Dashboard) mutateDeleteUniversity(ctx context.Context, payload any) error {
	name, ok := payload.(string)
	if !ok {
		return fmt.Errorf("delete-university expects a name, got %T", payload)
	}
	return d.relational.DeleteUniversity(ctx, name)
}

func (d *Dashboard) mutateAddPublication(ctx context.Context, payload any) error {
	req, ok := payload.(AddPublicationRequest)
	if !ok {
		return fmt.Errorf("add-publication expects AddPublicationRequest, got %T", payload)
	}
	_, err := d.relational.AddPublication(ctx, req.FacultyID, req.Fields)
	return err
}

func (d *Dashboard) mutateUpdatePublication(ctx context.Context, payload any) error {
	req, ok := payload.(UpdatePublicationRequest)
	if !ok {
		return fmt.Errorf("update-publication expects UpdatePublicationRequest, got %T", payload)
	}
	return d.relational.UpdatePublication(ctx, req.PublicationID, req.Patch)
}

func (d *Dashboard) mutateDeletePublicationLink(ctx context.Context, payload any) error {
	pubID, ok := payload.(int64)
	if !ok {
		return fmt.Errorf("delete-publication-link expects a publication id, got %T", payload)
	}
	return d.relational.DeletePublicationLink(ctx, pubID)
}

// --- input setters ---

func (d *Dashboard) SetKeyword(ctx context.Context, keyword string) error {
	_, err := d.engine.SetInput(ctx, NodeKeywordInput, keyword)
	return err
}

func (d *Dashboard) SetKeywordFilter(ctx context.Context, keywords []string) error {
	_, err := d.engine.SetInput(ctx, NodeKeywordFilter, keywords)
	return err
}

func (d *Dashboard) SetUniversityFilter(ctx context.Context, universities []string) error {
	_, err := d.engine.SetInput(ctx, NodeUniversityFilter, universities)
	return err
}

func (d *Dashboard) SetYearFilter(ctx context.Context, yearRange *types.YearRange) error {
	_, err := d.engine.SetInput(ctx, NodeYearFilter, yearRange)
	return err
}

// SelectUniversity cascades: the faculty dropdown recomputes, and because
// the faculty selection is reset here the publication dropdown and edit
// controls collapse with it.
func (d *Dashboard) SelectUniversity(ctx context.Context, university string) error {
	if _, err := d.engine.SetInput(ctx, NodeSelectedUniversity, university); err != nil {
		return err
	}
	return d.SelectFaculty(ctx, 0)
}

func (d *Dashboard) SelectFaculty(ctx context.Context, facultyID int64) error {
	if _, err := d.engine.SetInput(ctx, NodeSelectedFaculty, facultyID); err != nil {
		return err
	}
	_, err := d.engine.SetInput(ctx, NodeSelectedPub, int64(0))
	return err
}

func (d *Dashboard) SelectPublication(ctx context.Context, publicationID int64) error {
	_, err := d.engine.SetInput(ctx, NodeSelectedPub, publicationID)
	return err
}

// --- mutation wrappers ---

func (d *Dashboard) AddUniversity(ctx context.Context, req AddUniversityRequest) error {
	return d.engine.Fire(ctx, MutationAddUniversity, req)
}

func (d *Dashboard) DeleteUniversity(ctx context.Context, name string) error {
	return d.engine.Fire(ctx, MutationDelUniversity, name)
}

func (d *Dashboard) AddPublication(ctx context.Context, req AddPublicationRequest) error {
	return d.engine.Fire(ctx, MutationAddPublication, req)
}

func (d *Dashboard) UpdatePublication(ctx context.Context, req UpdatePublicationRequest) error {
	return d.engine.Fire(ctx, MutationUpdatePub, req)
}

func (d *Dashboard) DeletePublicationLink(ctx context.Context, publicationID int64) error {
	return d.engine.Fire(ctx, MutationDeletePubLink, publicationID)
}

// --- widget accessors ---

func (d *Dashboard) CitationRanking() (aggregate.Table, error) {
	return d.tableValue(NodeCitationRanking)
}

func (d *Dashboard) KeywordScores() (types.KeywordScoreResult, error) {
	v, err := d.widgetValue(NodeKeywordScores)
	if err != nil {
		return types.KeywordScoreResult{}, err
	}
	result, _ := v.(types.KeywordScoreResult)
	return result, nil
}

func (d *Dashboard) KeywordRelevantCitation() (aggregate.Table, error) {
	return d.tableValue(NodeKRC)
}

func (d *Dashboard) PublicationsOverTime() (aggregate.Table, error) {
	return d.tableValue(NodePubsOverTime)
}

func (d *Dashboard) UniversityOptions() ([]string, error) {
	v, err := d.widgetValue(NodeUniversityOptions)
	if err != nil {
		return nil, err
	}
	names, _ := v.([]string)
	return names, nil
}

func (d *Dashboard) FacultyOptions() ([]types.FacultyOption, error) {
	v, err := d.widgetValue(NodeFacultyOptions)
	if err != nil {
		return nil, err
	}
	options, _ := v.([]types.FacultyOption)
	return options, nil
}

func (d *Dashboard) PublicationOptions() ([]types.PublicationOption, error) {
	v, err := d.widgetValue(NodePubOptions)
	if err != nil {
		return nil, err
	}
	options, _ := v.([]types.PublicationOption)
	return options, nil
}

func (d *Dashboard) EditControls() (EditControls, error) {
	v, err := d.widgetValue(NodeEditControls)
	if err != nil {
		return EditControls{}, err
	}
	controls, _ := v.(EditControls)
	return controls, nil
}

func (d *Dashboard) KeywordSuggestions() ([]string, error) {
	v, err := d.widgetValue(NodeSuggestions)
	if err != nil {
		return nil, err
	}
	suggestions, _ := v.([]string)
	return suggestions, nil
}

func (d *Dashboard) widgetValue(name string) (any, error) {
	if err := d.engine.Err(name); err != nil {
		return nil, err
	}
	v, ok := d.engine.Value(name)
	if !ok {
		return nil, fmt.Errorf("widget %q has not settled", name)
	}
	return v, nil
}

func (d *Dashboard) tableValue(name string) (aggregate.Table, error) {
	v, err := d.widgetValue(name)
	if err != nil {
		return aggregate.Table{}, err
	}
	table, _ := v.(aggregate.Table)
	return table, nil
}
