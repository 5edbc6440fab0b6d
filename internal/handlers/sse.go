package handlers

import (
  "net/http"
  "strings"
  "sync"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/academicworld-backend/internal/logger"
  "github.com/yungbote/academicworld-backend/internal/reactive"
  "github.com/yungbote/academicworld-backend/internal/sse"
)

type SSEHandler struct {
  Log *logger.Logger
  Hub *sse.SSEHub

  mu      sync.RWMutex
  clients map[uuid.UUID]*sse.SSEClient
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
  return &SSEHandler{
    Log:     log,
    Hub:     hub,
    clients: make(map[uuid.UUID]*sse.SSEClient),
  }
}

// Stream opens the event stream. With no explicit channel list the client
// gets every refresh counter, which is what the dashboard shell wants.
func (h *SSEHandler) Stream(c *gin.Context) {
  client := h.Hub.NewSSEClient()

  channels := strings.Split(c.Query("channels"), ",")
  subscribed := 0
  for _, ch := range channels {
    ch = strings.TrimSpace(ch)
    if ch == "" {
      continue
    }
    h.Hub.AddChannel(client, ch)
    subscribed++
  }
  if subscribed == 0 {
    for _, counter := range []string{reactive.NodeAddRefresh, reactive.NodeDeleteRefresh, reactive.NodePubRefresh} {
      h.Hub.AddChannel(client, counter)
    }
  }

  h.mu.Lock()
  h.clients[client.ID] = client
  h.mu.Unlock()
  h.Log.Info("SSE stream open", "clientID", client.ID)

  c.Writer.Header().Set("X-Client-ID", client.ID.String())
  h.Hub.ServeHTTP(c.Writer, c.Request, client)

  h.mu.Lock()
  delete(h.clients, client.ID)
  h.mu.Unlock()
  h.Hub.CloseClient(client)
}

func (h *SSEHandler) Subscribe(c *gin.Context) {
  client, req, ok := h.clientAndChannel(c)
  if !ok {
    return
  }
  h.Hub.AddChannel(client, req)
  RespondOK(c, gin.H{"status": "subscribed", "channel": req})
}

func (h *SSEHandler) Unsubscribe(c *gin.Context) {
  client, req, ok := h.clientAndChannel(c)
  if !ok {
    return
  }
  h.Hub.RemoveChannel(client, req)
  RespondOK(c, gin.H{"status": "unsubscribed", "channel": req})
}

func (h *SSEHandler) clientAndChannel(c *gin.Context) (*sse.SSEClient, string, bool) {
  var req struct {
    ClientID string `json:"client_id"`
    Channel  string `json:"channel"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
    return nil, "", false
  }
  clientID, err := uuid.Parse(req.ClientID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
    return nil, "", false
  }

  h.mu.RLock()
  client, exists := h.clients[clientID]
  h.mu.RUnlock()
  if !exists {
    c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this client"})
    return nil, "", false
  }
  return client, strings.TrimSpace(req.Channel), true
}
