package handlers

import (
  "net/http"
  "strconv"
  "strings"

  "github.com/gin-gonic/gin"
  "golang.org/x/sync/errgroup"

  "github.com/yungbote/academicworld-backend/internal/aggregate"
  "github.com/yungbote/academicworld-backend/internal/apperr"
  "github.com/yungbote/academicworld-backend/internal/reactive"
  "github.com/yungbote/academicworld-backend/internal/services"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type DashboardHandler struct {
  dashboard  *reactive.Dashboard
  relational services.RelationalService
  document   services.DocumentService
  graph      services.GraphService
}

func NewDashboardHandler(
  dashboard *reactive.Dashboard,
  relational services.RelationalService,
  document services.DocumentService,
  graph services.GraphService,
) *DashboardHandler {
  return &DashboardHandler{
    dashboard:  dashboard,
    relational: relational,
    document:   document,
    graph:      graph,
  }
}

// Bootstrap loads the option sets every dropdown needs for first render,
// fanned out across the three stores.
func (dh *DashboardHandler) Bootstrap(c *gin.Context) {
  var (
    universities []string
    keywords     []string
    yearRange    types.YearRange
  )

  g, ctx := errgroup.WithContext(c.Request.Context())
  g.Go(func() error {
    var err error
    universities, err = dh.relational.AllUniversities(ctx)
    return err
  })
  g.Go(func() error {
    var err error
    keywords, err = dh.relational.AllKeywords(ctx)
    return err
  })
  g.Go(func() error {
    var err error
    yearRange, err = dh.document.PublicationYearRange(ctx)
    return err
  })
  if err := g.Wait(); err != nil {
    RespondServiceError(c, err)
    return
  }

  RespondOK(c, gin.H{
    "universities": universities,
    "keywords":     keywords,
    "year_range":   yearRange,
  })
}

func (dh *DashboardHandler) Snapshot(c *gin.Context) {
  RespondOK(c, gin.H{"nodes": dh.dashboard.Engine().Snapshot()})
}

func (dh *DashboardHandler) CitationRanking(c *gin.Context) {
  rows, err := dh.relational.CitationRanking(c.Request.Context(), c.Query("university"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"table": aggregate.FromCitationRanking(rows)})
}

func (dh *DashboardHandler) KeywordScores(c *gin.Context) {
  result, err := dh.relational.KeywordScoreRanking(c.Request.Context(), c.QueryArray("keyword"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  switch result.Kind {
  case types.KeywordScoreNoMatch:
    RespondOK(c, gin.H{"status": "no_match", "table": aggregate.FromKeywordScores(nil)})
  case types.KeywordScoreEmpty:
    RespondOK(c, gin.H{"status": "empty", "table": aggregate.FromKeywordScores(nil)})
  default:
    RespondOK(c, gin.H{"status": "ok", "table": aggregate.FromKeywordScores(result.Rows)})
  }
}

func (dh *DashboardHandler) KeywordRelevantCitation(c *gin.Context) {
  rows, err := dh.graph.KeywordRelevantCitation(c.Request.Context(), c.Query("keyword"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"table": aggregate.FromKRC(rows)})
}

func (dh *DashboardHandler) PublicationsOverTime(c *gin.Context) {
  yearRange, err := parseYearRange(c.Query("min_year"), c.Query("max_year"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  rows, err := dh.document.PublicationsOverTime(c.Request.Context(), c.QueryArray("university"), yearRange)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"table": aggregate.FromPublicationsOverTime(rows)})
}

func (dh *DashboardHandler) KeywordSuggestions(c *gin.Context) {
  term := strings.TrimSpace(c.Query("term"))
  if term == "" {
    RespondOK(c, gin.H{"suggestions": []string{}})
    return
  }
  suggestions, err := dh.relational.KeywordSuggestions(c.Request.Context(), term)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"suggestions": suggestions})
}

func (dh *DashboardHandler) PublicationYearRange(c *gin.Context) {
  yearRange, err := dh.document.PublicationYearRange(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"year_range": yearRange})
}

// SetKeyword drives the reactive keyword input; the KRC widget and the
// suggestion list recompute before the response is written.
func (dh *DashboardHandler) SetKeyword(c *gin.Context) {
  var req struct {
    Keyword string `json:"keyword"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := dh.dashboard.SetKeyword(c.Request.Context(), strings.TrimSpace(req.Keyword)); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodeKRC)
}

func (dh *DashboardHandler) SetKeywordFilter(c *gin.Context) {
  var req struct {
    Keywords []string `json:"keywords"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := dh.dashboard.SetKeywordFilter(c.Request.Context(), req.Keywords); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodeKeywordScores)
}

func (dh *DashboardHandler) SetFilters(c *gin.Context) {
  var req struct {
    Universities []string         `json:"universities"`
    YearRange    *types.YearRange `json:"year_range"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  ctx := c.Request.Context()
  if err := dh.dashboard.SetUniversityFilter(ctx, req.Universities); err != nil {
    RespondServiceError(c, err)
    return
  }
  if err := dh.dashboard.SetYearFilter(ctx, req.YearRange); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodePubsOverTime)
}

func (dh *DashboardHandler) SelectUniversity(c *gin.Context) {
  var req struct {
    University string `json:"university"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := dh.dashboard.SelectUniversity(c.Request.Context(), strings.TrimSpace(req.University)); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodeFacultyOptions)
}

func (dh *DashboardHandler) SelectFaculty(c *gin.Context) {
  var req struct {
    FacultyID int64 `json:"faculty_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := dh.dashboard.SelectFaculty(c.Request.Context(), req.FacultyID); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodePubOptions)
}

func (dh *DashboardHandler) SelectPublication(c *gin.Context) {
  var req struct {
    PublicationID int64 `json:"publication_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := dh.dashboard.SelectPublication(c.Request.Context(), req.PublicationID); err != nil {
    RespondServiceError(c, err)
    return
  }
  dh.respondWidget(c, reactive.NodeEditControls)
}

// Widget returns one settled widget value by node name.
func (dh *DashboardHandler) Widget(c *gin.Context) {
  dh.respondWidget(c, c.Param("name"))
}

func (dh *DashboardHandler) respondWidget(c *gin.Context, name string) {
  engine := dh.dashboard.Engine()
  if err := engine.Err(name); err != nil {
    RespondServiceError(c, err)
    return
  }
  value, ok := engine.Value(name)
  if !ok {
    RespondError(c, http.StatusNotFound, apperr.CodeNotFound, apperr.Newf(apperr.CodeNotFound, "no settled widget named %q", name))
    return
  }
  RespondOK(c, gin.H{"widget": name, "value": value})
}

func parseYearRange(minRaw, maxRaw string) (*types.YearRange, error) {
  if minRaw == "" && maxRaw == "" {
    return nil, nil
  }
  yearRange := &types.YearRange{}
  if minRaw != "" {
    v, err := strconv.Atoi(minRaw)
    if err != nil {
      return nil, apperr.Newf(apperr.CodeValidation, "min_year must be an integer")
    }
    yearRange.Min = &v
  }
  if maxRaw != "" {
    v, err := strconv.Atoi(maxRaw)
    if err != nil {
      return nil, apperr.Newf(apperr.CodeValidation, "max_year must be an integer")
    }
    yearRange.Max = &v
  }
  return yearRange, nil
}
