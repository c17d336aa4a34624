package sound

// EventType identifies game happenings the simulation publishes.
type EventType int

const (
	EventThrowStarted EventType = iota
	EventStoneReleased
	EventStoneCollision
	EventScoreAwarded
	EventGameWon
	EventGameLost
	EventUIClick
)

type Event struct {
	Type  EventType
	Value float64 // generic payload (collision intensity, points scored)
}

type EventHandler func(Event)

// EventBus decouples the simulation from the audio command surface.
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}

// AttachEvents wires the bus onto the engine's command surface so the
// simulation can publish events without knowing the audio API.
func (e *Engine) AttachEvents(bus *EventBus) {
	bus.Subscribe(EventThrowStarted, func(Event) { e.PlayThrow() })
	bus.Subscribe(EventStoneReleased, func(Event) { e.PlayRelease() })
	bus.Subscribe(EventStoneCollision, func(ev Event) { e.PlayCollision(ev.Value) })
	bus.Subscribe(EventScoreAwarded, func(ev Event) { e.PlayScore(int(ev.Value)) })
	bus.Subscribe(EventGameWon, func(Event) { e.PlayVictory() })
	bus.Subscribe(EventGameLost, func(Event) { e.PlayDefeat() })
	bus.Subscribe(EventUIClick, func(Event) { e.PlayClick() })
}
