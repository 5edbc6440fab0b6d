package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/academicworld-backend/internal/apperr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondServiceError maps a classified store error onto an HTTP status.
// Unclassified errors stay opaque 500s.
func RespondServiceError(c *gin.Context, err error) {
  code := apperr.CodeOf(err)
  RespondError(c, statusFor(code), code, err)
}

func statusFor(code string) int {
  switch code {
  case apperr.CodeValidation:
    return http.StatusBadRequest
  case apperr.CodeNotFound:
    return http.StatusNotFound
  case apperr.CodeDuplicateEntry, apperr.CodeReferentialIntegrity:
    return http.StatusConflict
  case apperr.CodeStoreUnavailable:
    return http.StatusServiceUnavailable
  default:
    return http.StatusInternalServerError
  }
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
