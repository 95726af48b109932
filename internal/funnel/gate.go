package funnel

import "fmt"

// Step is a screen of the booking funnel.
type Step string

const (
	StepSearch   Step = "busqueda"
	StepOutbound Step = "vuelos"
	StepReturn   Step = "regreso"
	StepSeats    Step = "asientos"
	StepDetail   Step = "detalle"
	StepPayment  Step = "pago"
)

// Path is the client route of a step.
func (s Step) Path() string {
	switch s {
	case StepOutbound:
		return "/vuelos"
	case StepReturn:
		return "/vuelos/regreso"
	case StepSeats:
		return "/asientos"
	case StepDetail:
		return "/detalle"
	case StepPayment:
		return "/pago"
	}
	return "/"
}

// Fallback routes used when a gate fails.
const (
	FallbackSearch   = "/"
	FallbackOutbound = "/vuelos"
	FallbackReturn   = "/vuelos/regreso"
	FallbackSeats    = "/asientos"
	FallbackCheckout = "/detalle"
	FallbackLogin    = "/login"
)

// Gate is a predicate over a session with a fixed fallback route.
type Gate struct {
	Name     string
	Fallback string
	Allow    func(Session) bool
}

// Decision is the outcome of evaluating a step. From carries the location
// the client originally asked for so it can resume there.
type Decision struct {
	Allowed  bool   `json:"permitido"`
	Redirect string `json:"redirigir,omitempty"`
	From     string `json:"desde,omitempty"`
	Gate     string `json:"gate,omitempty"`
}

var (
	SearchGate = Gate{
		Name:     "search",
		Fallback: FallbackSearch,
		Allow:    func(s Session) bool { return s.Search.complete() },
	}

	OutboundGate = Gate{
		Name:     "outbound",
		Fallback: FallbackOutbound,
		Allow:    func(s Session) bool { return s.Outbound.complete() },
	}

	ReturnGate = Gate{
		Name:     "return",
		Fallback: FallbackReturn,
		Allow:    func(s Session) bool { return !s.RoundTrip() || s.Return.complete() },
	}

	SeatsGate = Gate{
		Name:     "seats",
		Fallback: FallbackSeats,
		Allow:    func(s Session) bool { return len(s.Seats) > 0 },
	}

	CheckoutGate = Gate{
		Name:     "checkout",
		Fallback: FallbackCheckout,
		Allow:    func(s Session) bool { return s.CheckoutReady && itineraryComplete(s) },
	}

	// AuthGate lets guests through once checkout is ready.
	AuthGate = Gate{
		Name:     "auth",
		Fallback: FallbackLogin,
		Allow:    func(s Session) bool { return s.Authenticated || s.CheckoutReady },
	}
)

var stepGates = map[Step][]Gate{
	StepSearch:   {},
	StepOutbound: {SearchGate},
	StepReturn:   {SearchGate, OutboundGate},
	StepSeats:    {SearchGate, OutboundGate, ReturnGate},
	StepDetail:   {SearchGate, OutboundGate, ReturnGate},
	StepPayment:  {CheckoutGate, SeatsGate, AuthGate},
}

// Gates returns the gates guarding step in evaluation order.
func Gates(step Step) ([]Gate, error) {
	gates, ok := stepGates[step]
	if !ok {
		return nil, fmt.Errorf("unknown funnel step %q", step)
	}
	return gates, nil
}

// Evaluate runs the gates of step against the session and stops at the
// first failure.
func Evaluate(step Step, s Session) (Decision, error) {
	gates, err := Gates(step)
	if err != nil {
		return Decision{}, err
	}

	s = s.Normalize()
	for _, g := range gates {
		if !g.Allow(s) {
			return g.deny(step), nil
		}
	}
	return Decision{Allowed: true}, nil
}

func (g Gate) deny(step Step) Decision {
	return Decision{Allowed: false, Redirect: g.Fallback, From: step.Path(), Gate: g.Name}
}
