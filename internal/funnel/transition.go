package funnel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidData is returned when the data submitted for a step cannot be
// applied to the session.
var ErrInvalidData = errors.New("invalid step data")

// Advance records what the client chose on step and returns the updated
// session. The step's gates run first; when one fails the session is
// returned unchanged with the failing decision. Every change clears the
// steps after it, so a session never carries selections made for an
// earlier search or itinerary.
func Advance(s Session, step Step, data []byte) (Session, Decision, error) {
	s = s.Normalize()

	decision, err := Evaluate(step, s)
	if err != nil {
		return s, Decision{}, err
	}
	if !decision.Allowed {
		return s, decision, nil
	}

	switch step {
	case StepSearch:
		var search Search
		if err := decode(data, &search); err != nil {
			return s, Decision{}, err
		}
		if !search.complete() {
			return s, Decision{}, fmt.Errorf("%w: origen, destino and fecha_ida are required", ErrInvalidData)
		}
		s.SetSearch(search)

	case StepOutbound, StepReturn:
		var sel Selection
		if err := decode(data, &sel); err != nil {
			return s, Decision{}, err
		}
		if !sel.complete() {
			return s, Decision{}, fmt.Errorf("%w: viaje_id and tarifa_id are required", ErrInvalidData)
		}
		if step == StepOutbound {
			s.SelectOutbound(sel)
		} else {
			if !s.RoundTrip() {
				return s, Decision{}, fmt.Errorf("%w: the search is one-way", ErrInvalidData)
			}
			s.SelectReturn(sel)
		}

	case StepSeats:
		var seats []string
		if err := decode(data, &seats); err != nil {
			return s, Decision{}, err
		}
		cleaned := seats[:0]
		for _, seat := range seats {
			if seat = strings.ToUpper(strings.TrimSpace(seat)); seat != "" {
				cleaned = append(cleaned, seat)
			}
		}
		if len(cleaned) == 0 {
			return s, Decision{}, fmt.Errorf("%w: at least one seat is required", ErrInvalidData)
		}
		s.ChooseSeats(cleaned)

	case StepDetail:
		if !SeatsGate.Allow(s) {
			return s, SeatsGate.deny(step), nil
		}
		s.MarkCheckoutReady()

	default:
		return s, Decision{}, fmt.Errorf("%w: step %q records no selection", ErrInvalidData, step)
	}

	return s, decision, nil
}

func decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: datos is required", ErrInvalidData)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}
