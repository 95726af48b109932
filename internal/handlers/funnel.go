package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/viajes/internal/funnel"
	"github.com/example/viajes/internal/middleware"
)

// FunnelHandler answers navigation checks for the booking funnel and runs
// the mocked payment step.
type FunnelHandler struct{}

func NewFunnelHandler() *FunnelHandler {
	return &FunnelHandler{}
}

type funnelCheckRequest struct {
	Step    funnel.Step     `json:"paso"`
	Session json.RawMessage `json:"sesion"`
}

// withAuth replaces the client supplied auth marker with what the request
// actually proves.
func withAuth(c *fiber.Ctx, s funnel.Session) funnel.Session {
	_, ok := middleware.GetCurrentClaims(c)
	s.Authenticated = ok
	return s
}

// Check implements POST /funnel/check.
func (h *FunnelHandler) Check(c *fiber.Ctx) error {
	var req funnelCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session := withAuth(c, funnel.Load(req.Session))
	decision, err := funnel.Evaluate(req.Step, session)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    decision,
		"etapa":   session.Stage(),
	})
}

type funnelTransitionRequest struct {
	Step    funnel.Step     `json:"paso"`
	Session json.RawMessage `json:"sesion"`
	Data    json.RawMessage `json:"datos"`
}

// Transition implements POST /funnel/transition. It records the choice made
// on a step and returns the updated session, or 409 with the redirect when
// the step is not reachable yet.
func (h *FunnelHandler) Transition(c *fiber.Ctx) error {
	var req funnelTransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session := withAuth(c, funnel.Load(req.Session))
	next, decision, err := funnel.Advance(session, req.Step, req.Data)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !decision.Allowed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "step is not reachable yet",
			"data":    decision,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"sesion": next,
			"etapa":  next.Stage(),
		},
	})
}

type checkoutRequest struct {
	Session json.RawMessage `json:"sesion"`
	Method  string          `json:"metodo"`
}

var paymentMethods = map[string]bool{
	"tarjeta":     true,
	"paypal":      true,
	"mercadopago": true,
}

// Checkout implements POST /pagos/checkout. No gateway is called; an
// approved confirmation is returned whenever the payment step is reachable.
func (h *FunnelHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = "tarjeta"
	}
	if !paymentMethods[method] {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported payment method")
	}

	session := withAuth(c, funnel.Load(req.Session))
	decision, err := funnel.Evaluate(funnel.StepPayment, session)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "checkout is not ready",
			"data":    decision,
		})
	}

	reference := "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"referencia": reference,
			"estado":     "aprobado",
			"metodo":     method,
			"ida":        session.Outbound,
			"regreso":    session.Return,
			"asientos":   session.Seats,
		},
	})
}
