package webhook

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pine-backend/internal/config"
	"pine-backend/internal/pipeline"
	"pine-backend/pkg/models"
)

// LeadProcessor is what the handler needs from the pipeline.
type LeadProcessor interface {
	Process(ctx context.Context, lead *models.Lead, opts pipeline.Options) []pipeline.StageResult
}

type Handler struct {
	Config   *config.Config
	Pipeline LeadProcessor
}

func NewHandler(cfg *config.Config, p LeadProcessor) *Handler {
	return &Handler{
		Config:   cfg,
		Pipeline: p,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "PINE AI Assist backend is running")
}

// Debug reports presence or absence of each configuration value. Values
// themselves are never returned.
func (h *Handler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"env": h.Config.DebugReport()})
}

// ContactUsage answers GET on the contact route so browsers don't see a
// bare "404 page not found".
func (h *Handler) ContactUsage(c *gin.Context) {
	c.String(http.StatusOK, "Use POST with JSON body to /api/contact for AI replies.")
}

type ContactRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// HandleContact is the AI-assist intake. All fields are optional, including
// message: the route contract is 200 {id, reply} for every well-formed body,
// so validation stays on the webhook route.
func (h *Handler) HandleContact(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("contact error: %v", r)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
	}()

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("contact: invalid body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	lead := models.NewLead(req.Name, req.Contact, req.Message, req.Source)
	log.Printf("Incoming lead: name=%q contact=%q source=%q", req.Name, req.Contact, req.Source)

	h.Pipeline.Process(c.Request.Context(), lead, pipeline.Options{
		GenerateReply: true,
		AppendLedger:  true,
	})

	c.JSON(http.StatusOK, gin.H{"id": lead.ID, "reply": lead.ReplyText})
}

type WebsiteLeadRequest struct {
	Message string `json:"message"`
	From    string `json:"from"`
	Source  string `json:"source"`
}

// HandleWebsiteLead is the simple-notify intake: a non-empty message is the
// only hard requirement, everything after validation is best-effort.
func (h *Handler) HandleWebsiteLead(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error in /webhook/website: %v", r)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		}
	}()

	var req WebsiteLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("webhook: invalid body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing 'message' field"})
		return
	}

	if req.Message == "" {
		log.Println("No 'message' field in payload")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing 'message' field"})
		return
	}

	lead := models.NewLead("", req.From, req.Message, req.Source)
	log.Printf("Website lead received: from=%q source=%q", req.From, req.Source)

	h.Pipeline.Process(c.Request.Context(), lead, pipeline.Options{
		ConfirmVisitor: true,
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}
