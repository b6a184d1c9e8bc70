package events

// Selection is published when a panel gains or loses the selection.
type Selection struct {
	Body     int
	Panel    int
	Entering bool
}

// Hover is published when the pointer moves onto or off a panel.
type Hover struct {
	Body     int
	Panel    int
	Entering bool
}

// ViewChange is published on every view state change. Body is -1 when no body is targeted.
type ViewChange struct {
	From string
	To   string
	Body int
}

// Kind names a channel on the bus.
type Kind int

const (
	KindSelection Kind = iota
	KindHover
	KindView
)

type handler[T any] struct {
	id uint32
	fn func(T)
}

type handlers[T any] []handler[T]

func (hs handlers[T]) publish(e T) {
	for _, h := range hs {
		h.fn(e)
	}
}

func (hs handlers[T]) remove(id uint32) handlers[T] {
	for i := range hs {
		if hs[i].id == id {
			copy(hs[i:], hs[i+1:])
			hs[len(hs)-1] = handler[T]{}
			return hs[:len(hs)-1]
		}
	}
	return hs
}

// Bus delivers events synchronously, on the caller's goroutine, in subscription order.
type Bus struct {
	selection handlers[Selection]
	hover     handlers[Hover]
	view      handlers[ViewChange]
	nextID    uint32
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Handle removes a subscription.
type Handle struct {
	id   uint32
	bus  *Bus
	kind Kind
}

// Remove unsubscribes. Removing twice is harmless.
func (h Handle) Remove() {
	if h.bus == nil {
		return
	}
	switch h.kind {
	case KindSelection:
		h.bus.selection = h.bus.selection.remove(h.id)
	case KindHover:
		h.bus.hover = h.bus.hover.remove(h.id)
	case KindView:
		h.bus.view = h.bus.view.remove(h.id)
	}
}

// OnSelection subscribes fn to selection events.
func (b *Bus) OnSelection(fn func(Selection)) Handle {
	b.nextID++
	b.selection = append(b.selection, handler[Selection]{id: b.nextID, fn: fn})
	return Handle{id: b.nextID, bus: b, kind: KindSelection}
}

// OnHover subscribes fn to hover events.
func (b *Bus) OnHover(fn func(Hover)) Handle {
	b.nextID++
	b.hover = append(b.hover, handler[Hover]{id: b.nextID, fn: fn})
	return Handle{id: b.nextID, bus: b, kind: KindHover}
}

// OnView subscribes fn to view state changes.
func (b *Bus) OnView(fn func(ViewChange)) Handle {
	b.nextID++
	b.view = append(b.view, handler[ViewChange]{id: b.nextID, fn: fn})
	return Handle{id: b.nextID, bus: b, kind: KindView}
}

// PublishSelection delivers e to every selection subscriber.
func (b *Bus) PublishSelection(e Selection) { b.selection.publish(e) }

// PublishHover delivers e to every hover subscriber.
func (b *Bus) PublishHover(e Hover) { b.hover.publish(e) }

// PublishView delivers e to every view subscriber.
func (b *Bus) PublishView(e ViewChange) { b.view.publish(e) }

// Recorder collects everything published on a bus. Used by the console and by tests.
type Recorder struct {
	Selections []Selection
	Hovers     []Hover
	Views      []ViewChange
	handles    []Handle
}

// Record subscribes a new recorder to every channel of b.
func Record(b *Bus) *Recorder {
	r := &Recorder{}
	r.handles = append(r.handles,
		b.OnSelection(func(e Selection) { r.Selections = append(r.Selections, e) }),
		b.OnHover(func(e Hover) { r.Hovers = append(r.Hovers, e) }),
		b.OnView(func(e ViewChange) { r.Views = append(r.Views, e) }),
	)
	return r
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	for _, h := range r.handles {
		h.Remove()
	}
	r.handles = nil
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Selections, r.Hovers, r.Views = nil, nil, nil
}
