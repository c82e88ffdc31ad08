package events

// Handler receives events from a Pump.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event)

// HandleEvent calls f(evt).
func (f HandlerFunc) HandleEvent(evt Event) {
	f(evt)
}

// Pump delivers every fired event to all registered handlers, synchronously
// and in registration order. It is not safe for concurrent use. Events are
// fired from the thread which polls the window.
type Pump struct {
	handlers []Handler
}

// NewPump returns a pump without handlers.
func NewPump() *Pump {
	return &Pump{}
}

// Register adds h to the handlers receiving events.
func (p *Pump) Register(h Handler) {
	p.handlers = append(p.handlers, h)
}

// Fire delivers evt to every handler before returning.
func (p *Pump) Fire(evt Event) {
	for _, h := range p.handlers {
		h.HandleEvent(evt)
	}
}
