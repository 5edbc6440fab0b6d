package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/academicworld-backend/internal/apperr"
  "github.com/yungbote/academicworld-backend/internal/reactive"
  "github.com/yungbote/academicworld-backend/internal/services"
  "github.com/yungbote/academicworld-backend/internal/types"
)

type PublicationHandler struct {
  dashboard  *reactive.Dashboard
  relational services.RelationalService
}

func NewPublicationHandler(dashboard *reactive.Dashboard, relational services.RelationalService) *PublicationHandler {
  return &PublicationHandler{dashboard: dashboard, relational: relational}
}

func (ph *PublicationHandler) ByFaculty(c *gin.Context) {
  facultyID, err := pathID(c, "id")
  if err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  options, err := ph.relational.PublicationsByFaculty(c.Request.Context(), facultyID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"publications": options})
}

func (ph *PublicationHandler) Get(c *gin.Context) {
  publicationID, err := pathID(c, "id")
  if err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  pub, err := ph.relational.GetPublication(c.Request.Context(), publicationID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"publication": pub})
}

func (ph *PublicationHandler) Add(c *gin.Context) {
  var req struct {
    FacultyID int64                  `json:"faculty_id"`
    Fields    types.PublicationPatch `json:"fields"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }

  err := ph.dashboard.AddPublication(c.Request.Context(), reactive.AddPublicationRequest{
    FacultyID: req.FacultyID,
    Fields:    req.Fields,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "publication added"})
}

func (ph *PublicationHandler) Update(c *gin.Context) {
  publicationID, err := pathID(c, "id")
  if err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  var patch types.PublicationPatch
  if err := c.ShouldBindJSON(&patch); err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }

  err = ph.dashboard.UpdatePublication(c.Request.Context(), reactive.UpdatePublicationRequest{
    PublicationID: publicationID,
    Patch:         patch,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "publication updated"})
}

// DeleteLink removes faculty associations only; the store trigger reaps the
// publication row once its last link is gone.
func (ph *PublicationHandler) DeleteLink(c *gin.Context) {
  publicationID, err := pathID(c, "id")
  if err != nil {
    RespondError(c, http.StatusBadRequest, apperr.CodeValidation, err)
    return
  }
  if err := ph.dashboard.DeletePublicationLink(c.Request.Context(), publicationID); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"status": "publication link deleted"})
}

func pathID(c *gin.Context, name string) (int64, error) {
  id, err := strconv.ParseInt(c.Param(name), 10, 64)
  if err != nil || id <= 0 {
    return 0, apperr.Newf(apperr.CodeValidation, "%s must be a positive integer", name)
  }
  return id, nil
}
