package funnel

import (
	"encoding/json"
	"errors"
	"testing"
)

func searched(roundTrip bool) Session {
	s := NewSession()
	s.SetSearch(Search{Origin: "SCL", Destination: "PMC", DepartureDate: "2025-11-03", RoundTrip: roundTrip})
	return s
}

func TestOutboundStepRequiresSearch(t *testing.T) {
	d, err := Evaluate(StepOutbound, NewSession())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Allowed || d.Redirect != FallbackSearch || d.From != "/vuelos" {
		t.Fatalf("unexpected decision %+v", d)
	}

	s := NewSession()
	s.SetSearch(Search{Origin: "SCL", Destination: " ", DepartureDate: "2025-11-03"})
	if d, _ := Evaluate(StepOutbound, s); d.Allowed {
		t.Fatal("blank destination must not pass")
	}

	if d, _ := Evaluate(StepOutbound, searched(false)); !d.Allowed {
		t.Fatalf("complete search should pass, got %+v", d)
	}
}

func TestDetailRedirectsToReturnSelection(t *testing.T) {
	s := searched(true)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})

	d, err := Evaluate(StepDetail, s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Allowed || d.Redirect != FallbackReturn {
		t.Fatalf("expected redirect to return selection, got %+v", d)
	}
}

func TestOneWaySkipsReturnGate(t *testing.T) {
	s := searched(false)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})

	if d, _ := Evaluate(StepDetail, s); !d.Allowed {
		t.Fatalf("one-way itinerary should reach detail, got %+v", d)
	}
}

func TestOutboundNeedsFare(t *testing.T) {
	s := searched(false)
	s.SelectOutbound(Selection{TripID: "t1"})

	d, _ := Evaluate(StepSeats, s)
	if d.Allowed || d.Redirect != FallbackOutbound {
		t.Fatalf("trip without fare should redirect to outbound, got %+v", d)
	}
}

func TestPaymentWithoutMarkersRedirectsToDetail(t *testing.T) {
	d, err := Evaluate(StepPayment, NewSession())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if d.Allowed || d.Redirect != FallbackCheckout || d.From != "/pago" {
		t.Fatalf("expected redirect to detail, got %+v", d)
	}
}

func TestGuestCheckoutBypassesAuth(t *testing.T) {
	s := searched(true)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})
	s.SelectReturn(Selection{TripID: "t2", FareID: "f2"})
	s.ChooseSeats([]string{"12A"})
	if !s.MarkCheckoutReady() {
		t.Fatal("complete itinerary should be markable")
	}

	if d, _ := Evaluate(StepPayment, s); !d.Allowed {
		t.Fatalf("guest checkout should pass, got %+v", d)
	}
	if !AuthGate.Allow(Session{Version: SchemaVersion, Authenticated: true}) {
		t.Fatal("auth marker alone should satisfy the auth gate")
	}
}

func TestCheckoutMarkerWithoutReturnFails(t *testing.T) {
	s := searched(true)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})
	if s.MarkCheckoutReady() {
		t.Fatal("round trip without return should not be markable")
	}

	s.CheckoutReady = true
	d, _ := Evaluate(StepPayment, s)
	if d.Allowed || d.Gate != "checkout" {
		t.Fatalf("forged marker must not pass, got %+v", d)
	}
}

func TestChangingSearchClearsDownstream(t *testing.T) {
	s := searched(false)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})
	s.ChooseSeats([]string{"1A"})
	s.MarkCheckoutReady()

	s.SetSearch(Search{Origin: "SCL", Destination: "LIM", DepartureDate: "2025-12-01"})

	if s.Outbound != nil || s.Seats != nil || s.CheckoutReady {
		t.Fatalf("downstream state should be cleared: %+v", s)
	}
	if s.Stage() != StageSearched {
		t.Fatalf("expected stage %s, got %s", StageSearched, s.Stage())
	}
}

func TestStageProgression(t *testing.T) {
	s := NewSession()
	steps := []struct {
		apply func()
		want  Stage
	}{
		{func() {}, StageEmpty},
		{func() { s.SetSearch(Search{Origin: "SCL", Destination: "PMC", DepartureDate: "2025-11-03", RoundTrip: true}) }, StageSearched},
		{func() { s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"}) }, StageOutboundSelected},
		{func() { s.SelectReturn(Selection{TripID: "t2", FareID: "f2"}) }, StageReturnSelected},
		{func() { s.ChooseSeats([]string{"3C"}) }, StageSeatsChosen},
		{func() { s.MarkCheckoutReady() }, StageCheckoutReady},
	}

	for i, step := range steps {
		step.apply()
		if got := s.Stage(); got != step.want {
			t.Fatalf("step %d: expected %s, got %s", i, step.want, got)
		}
	}
}

func TestLoadRejectsOtherVersions(t *testing.T) {
	s := searched(false)
	s.Version = 99
	raw, _ := json.Marshal(s)

	if got := Load(raw); got.Search != nil {
		t.Fatalf("outdated snapshot should be discarded: %+v", got)
	}
	if got := Load([]byte("{not json")); got.Version != SchemaVersion {
		t.Fatalf("malformed snapshot should reset, got %+v", got)
	}

	s.Version = SchemaVersion
	raw, _ = json.Marshal(s)
	if got := Load(raw); got.Search == nil || got.Search.Destination != "PMC" {
		t.Fatalf("current snapshot should load, got %+v", got)
	}
}

func TestUnknownStep(t *testing.T) {
	if _, err := Evaluate(Step("nowhere"), NewSession()); err == nil {
		t.Fatal("expected error for unknown step")
	}
}

func TestCheckoutNeedsSeats(t *testing.T) {
	s := searched(false)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})

	if s.MarkCheckoutReady() {
		t.Fatal("itinerary without seats should not be markable")
	}
	if s.Stage() != StageOutboundSelected {
		t.Fatalf("unexpected stage %s", s.Stage())
	}

	s.CheckoutReady = true
	d, _ := Evaluate(StepPayment, s)
	if d.Allowed || d.Gate != "seats" || d.Redirect != FallbackSeats {
		t.Fatalf("payment without seats should redirect to seat selection, got %+v", d)
	}
}

func advance(t *testing.T, s Session, step Step, data interface{}) (Session, Decision) {
	t.Helper()
	raw, _ := json.Marshal(data)
	next, d, err := Advance(s, step, raw)
	if err != nil {
		t.Fatalf("advance %s: %v", step, err)
	}
	return next, d
}

func TestAdvanceWalksTheFunnel(t *testing.T) {
	s := NewSession()
	steps := []struct {
		step Step
		data interface{}
		want Stage
	}{
		{StepSearch, Search{Origin: "SCL", Destination: "PMC", DepartureDate: "2025-11-03", RoundTrip: true}, StageSearched},
		{StepOutbound, Selection{TripID: "t1", FareID: "f1"}, StageOutboundSelected},
		{StepReturn, Selection{TripID: "t2", FareID: "f2"}, StageReturnSelected},
		{StepSeats, []string{" 3c ", ""}, StageSeatsChosen},
		{StepDetail, nil, StageCheckoutReady},
	}

	for _, tc := range steps {
		var d Decision
		s, d = advance(t, s, tc.step, tc.data)
		if !d.Allowed {
			t.Fatalf("%s: expected allowed, got %+v", tc.step, d)
		}
		if s.Stage() != tc.want {
			t.Fatalf("%s: expected stage %s, got %s", tc.step, tc.want, s.Stage())
		}
	}
	if len(s.Seats) != 1 || s.Seats[0] != "3C" {
		t.Fatalf("seats should be cleaned, got %v", s.Seats)
	}

	if d, _ := Evaluate(StepPayment, s); !d.Allowed {
		t.Fatalf("payment should be reachable, got %+v", d)
	}

	s, _ = advance(t, s, StepOutbound, Selection{TripID: "t9", FareID: "f9"})
	if s.Return != nil || s.Seats != nil || s.CheckoutReady {
		t.Fatalf("changing the outbound leg should clear later steps: %+v", s)
	}
}

func TestAdvanceCannotSkipForward(t *testing.T) {
	s, d := advance(t, searched(false), StepSeats, []string{"1A"})
	if d.Allowed || d.Redirect != FallbackOutbound || s.Seats != nil {
		t.Fatalf("seats before outbound should be refused, got %+v %+v", d, s)
	}

	s = searched(false)
	s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})
	s, d = advance(t, s, StepDetail, nil)
	if d.Allowed || d.Gate != "seats" || s.CheckoutReady {
		t.Fatalf("detail without seats should be refused, got %+v", d)
	}
}

func TestAdvanceRejectsBadData(t *testing.T) {
	cases := []struct {
		name    string
		session Session
		step    Step
		data    string
	}{
		{"incomplete search", NewSession(), StepSearch, `{"origen":"SCL"}`},
		{"missing fare", searched(false), StepOutbound, `{"viaje_id":"t1"}`},
		{"return on one-way", func() Session {
			s := searched(false)
			s.SelectOutbound(Selection{TripID: "t1", FareID: "f1"})
			return s
		}(), StepReturn, `{"viaje_id":"t2","tarifa_id":"f2"}`},
		{"no data", searched(false), StepOutbound, ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Advance(tc.session, tc.step, []byte(tc.data))
			if !errors.Is(err, ErrInvalidData) {
				t.Fatalf("expected ErrInvalidData, got %v", err)
			}
		})
	}
}
