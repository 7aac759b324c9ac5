package lifecycle

import (
	"time"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// CreatedEvent announces a freshly persisted order to the kitchen.
func CreatedEvent(o model.Order, now time.Time) model.Event {
	return newOrderEvent(model.EventOrderCreated, o, now, model.TopicKitchen)
}

// TableEvent announces an occupancy flip to every connection.
func TableEvent(t model.Table, now time.Time) model.Event {
	return model.Event{
		Type:       model.EventTableUpdated,
		Topics:     []model.Topic{model.TopicGeneral},
		Table:      &t,
		OccurredAt: now,
	}
}

func transitionEvents(o model.Order, now time.Time) []model.Event {
	floor := []model.Topic{
		model.TopicKitchen,
		model.TopicCashier,
		model.TopicWaitStaff,
		model.StaffTopic(o.StaffID),
	}
	events := []model.Event{newOrderEvent(model.EventStatusChanged, o, now, floor...)}

	switch o.Status {
	case model.OrderStatusReady:
		ready := newOrderEvent(model.EventOrderReady, o, now, floor...)
		ready.HighPriority = true
		events = append(events, ready)
	case model.OrderStatusCancelled:
		events = append(events, newOrderEvent(model.EventOrderCancelled, o, now, model.TopicKitchen, model.TopicCashier))
	}
	return events
}

func newOrderEvent(typ model.EventType, o model.Order, now time.Time, topics ...model.Topic) model.Event {
	snapshot := o.Clone()
	return model.Event{
		Type:       typ,
		Topics:     topics,
		Order:      &snapshot,
		OccurredAt: now,
	}
}
