package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var order []string
	b.OnSelection(func(Selection) { order = append(order, "first") })
	b.OnSelection(func(Selection) { order = append(order, "second") })
	b.PublishSelection(Selection{Body: 0, Panel: 2, Entering: true})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_RemoveStopsDelivery(t *testing.T) {
	b := NewBus()
	calls := 0
	h := b.OnHover(func(Hover) { calls++ })
	b.PublishHover(Hover{})
	h.Remove()
	h.Remove()
	b.PublishHover(Hover{})
	assert.Equal(t, 1, calls)

	Handle{}.Remove()
}

func TestRecorder(t *testing.T) {
	b := NewBus()
	r := Record(b)
	b.PublishView(ViewChange{From: "overview", To: "to-detail", Body: 1})
	b.PublishSelection(Selection{Body: 1, Panel: 3, Entering: true})
	b.PublishHover(Hover{Body: 1, Panel: 3, Entering: true})

	assert.Equal(t, []ViewChange{{From: "overview", To: "to-detail", Body: 1}}, r.Views)
	assert.Len(t, r.Selections, 1)
	assert.Len(t, r.Hovers, 1)

	r.Reset()
	r.Stop()
	b.PublishSelection(Selection{})
	assert.Empty(t, r.Selections)
}
