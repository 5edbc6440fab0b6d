package handlers

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/academicworld-backend/internal/apperr"
  "github.com/yungbote/academicworld-backend/internal/reactive"
  "github.com/yungbote/academicworld-backend/internal/services"
)

type UniversityHandler struct {
  dashboard  *reactive.Dashboard
  relational services.RelationalService
}

func NewUniversityHandler(dashboard *reactive.Dashboard, relational services.RelationalService) *UniversityHandler {
  return &UniversityHandler{dashboard: dashboard, relational: relational}
}

func (uh *UniversityHandler) List(c *gin.Context) {
  names, err := uh.relational.AllUniversities(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"universities": names})
}

func (uh *UniversityHandler) Faculty(c *gin.Context) {
  options, err := uh.relational.FacultyByUniversity(c.Request.Context(), c.Param("name"))
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"faculty": options})
}

// Add fires through the dependency graph so every widget reading the
// university list refreshes before the response returns.
func (uh *UniversityHandler) Add(c *gin.Context) {
  var req struct {
    Name     string  `json:"name"`
    PhotoURL *string `json:"photo_url"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }

  err := uh.dashboard.AddUniversity(c.Request.Context(), reactive.AddUniversityRequest{
    Name:     strings.TrimSpace(req.Name),
    PhotoURL: req.PhotoURL,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "university added"})
}

func (uh *UniversityHandler) Delete(c *gin.Context) {
  name := strings.TrimSpace(c.Param("name"))
  if err := uh.dashboard.DeleteUniversity(c.Request.Context(), name); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "university deleted"})
}
