package webhook

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/metrics"
)

// Path is where the gateway delivers events
const Path = "/webhook"

// Server is the local HTTP listener the messaging gateway calls back into
type Server struct {
	hub *Hub
	app *fiber.App
}

func NewServer(hub *Hub) *Server {
	s := &Server{hub: hub}
	s.app = fiber.New(fiber.Config{
		AppName:               "Support Console Webhook",
		DisableStartupMessage: true,
	})
	s.app.Post(Path, s.Handle)
	return s
}

// Handle godoc
// @Summary Gateway webhook receiver
// @Description Receive message and delivery-status events from the messaging gateway
// @Tags Webhook
// @Accept json
// @Produce json
// @Param payload body map[string]interface{} true "Webhook payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /webhook [post]
func (s *Server) Handle(c *fiber.Ctx) error {
	evt, err := Decode(c.Body())
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(c.Body())).Msg("❌ Rejected webhook payload")
		metrics.WebhookRejected.Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	metrics.WebhookEvents.WithLabelValues(string(evt.Kind)).Inc()
	s.hub.Publish(evt)

	return c.JSON(fiber.Map{
		"status": "received",
		"kind":   evt.Kind,
	})
}

// App exposes the underlying fiber app (used by tests)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Str("path", Path).Msg("👂 Webhook listener started")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	log.Info().Msg("🛑 Webhook listener stopped")
	return s.app.Shutdown()
}
