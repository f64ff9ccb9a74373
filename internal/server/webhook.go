// Package server exposes the inbound WhatsApp webhook. The provider posts
// form-encoded messages (From, Body) and expects a TwiML envelope back; the
// endpoint always answers 200 with one message element, whatever happened
// internally.
package server

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/conversation"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/format"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/obslog"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/util"
)

type Server struct {
	app    *fiber.App
	engine *conversation.Engine
	fmt    *format.Formatter

	transportPrefix string
	countryCode     string
}

func New(engine *conversation.Engine, f *format.Formatter, transportPrefix, countryCode string) *Server {
	s := &Server{
		engine:          engine,
		fmt:             f,
		transportPrefix: transportPrefix,
		countryCode:     countryCode,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			obslog.L().Error("webhook_internal_error", zap.Error(err))
			return s.respond(c, s.fmt.Generic())
		},
	})
	s.app.Get("/", s.handleSaludo)
	s.app.Post("/webhook", s.handleWebhook)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(port int) error {
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) handleSaludo(c *fiber.Ctx) error {
	return c.SendString("Bot de gestión de partidos en línea ⚽")
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	turnID := uuid.NewString()
	from := strings.TrimSpace(c.FormValue("From"))
	body := strings.TrimSpace(c.FormValue("Body"))

	userID := util.NormalizeUserID(from, s.transportPrefix, s.countryCode)
	if userID == "" {
		obslog.L().Warn("webhook_missing_sender", zap.String("turn_id", turnID))
		return s.respond(c, s.fmt.Generic())
	}

	reply := s.handleTurn(c, turnID, userID, body)
	return s.respond(c, reply)
}

// handleTurn isolates the engine call so a panicking turn still produces the
// apology reply instead of dropping the HTTP exchange.
func (s *Server) handleTurn(c *fiber.Ctx, turnID, userID, body string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			obslog.L().Error("turn_panic", zap.String("turn_id", turnID), zap.String("user_id", userID), zap.Any("panic", r))
			reply = s.fmt.Generic()
		}
	}()

	obslog.L().Info("inbound_message", zap.String("turn_id", turnID), zap.String("user_id", userID), zap.Int("body_len", len(body)))
	reply = s.engine.Handle(c.UserContext(), userID, body)
	obslog.L().Debug("outbound_reply", zap.String("turn_id", turnID), zap.String("user_id", userID), zap.Int("reply_len", len(reply)))
	return reply
}

// twiml is the provider's reply envelope: one message element per response.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (s *Server) respond(c *fiber.Ctx, msg string) error {
	payload, err := xml.Marshal(twiml{Message: msg})
	if err != nil {
		payload = []byte("<Response><Message>" + fallbackEscape(msg) + "</Message></Response>")
	}
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.Status(fiber.StatusOK).Send(append([]byte(xml.Header), payload...))
}

func fallbackEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
