package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bitrix_activity/internal/webhook"
)

type EventHandler interface {
	HandleEvent(ctx context.Context, p webhook.Payload)
}

// Server is the inbound HTTP surface. The webhook receiver acknowledges
// with 200 before any processing starts; Bitrix redelivers on slow or
// non-200 responses, so the acknowledgment must never wait on the CRM or
// the database.
type Server struct {
	events EventHandler
	dedup  *webhook.Deduper
}

// New builds the server. dedup may be nil to disable the duplicate filter.
func New(events EventHandler, dedup *webhook.Deduper) *Server {
	return &Server{events: events, dedup: dedup}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/", s.handleLiveness)
	router.POST("/", s.handleWebhook)
	return router
}

func (s *Server) Start(addr string) error {
	log.Printf("HTTP server on %s", addr)
	return s.Router().Run(addr)
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.String(http.StatusOK, "Bitrix webhook service is alive")
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := c.GetRawData()

	// 200 no matter what; anything else makes Bitrix retry.
	c.String(http.StatusOK, "OK")

	if err != nil {
		log.Printf("server: read webhook body: %v", err)
		return
	}

	go s.process(c.ContentType(), body)
}

func (s *Server) process(contentType string, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("server: recovered panic while processing webhook: %v", r)
		}
	}()

	if s.dedup != nil && s.dedup.Duplicate(body) {
		log.Printf("server: duplicate delivery dropped")
		return
	}

	payload, err := webhook.Parse(contentType, body)
	if err != nil {
		log.Printf("server: parse webhook body: %v", err)
		return
	}

	// No cancellation propagates into a running handler; outbound calls
	// are bounded by the transport timeout.
	s.events.HandleEvent(context.Background(), payload)
}
