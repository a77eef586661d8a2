package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AMV0027/gcn-final/internal/pkg/response"
	"github.com/AMV0027/gcn-final/internal/service"
)

type DocumentHandler struct {
	corpus *service.CorpusService
}

func NewDocumentHandler(corpus *service.CorpusService) *DocumentHandler {
	return &DocumentHandler{corpus: corpus}
}

func (h *DocumentHandler) List(c *gin.Context) {
	names, err := h.corpus.ListDocuments(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": names})
}

func (h *DocumentHandler) File(c *gin.Context) {
	name := c.Query("name")
	data, err := h.corpus.DocumentFile(c.Request.Context(), name)
	if err != nil {
		handleError(c, err)
		return
	}
	filename := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
