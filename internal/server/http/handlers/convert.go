package handlers

import (
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
)

func toStaffResponse(s model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        s.ID,
		Login:     s.Login,
		Name:      s.Name,
		Role:      string(s.Role),
		CreatedAt: s.CreatedAt,
	}
}

func toTableResponse(t model.Table) dto.TableResponse {
	return dto.TableResponse{
		ID:        t.ID,
		Number:    t.Number,
		Capacity:  t.Capacity,
		Location:  t.Location,
		Status:    string(t.Status),
		UpdatedAt: t.UpdatedAt,
	}
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Available: p.Available,
	}
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		TableID:       o.TableID,
		StaffID:       o.StaffID,
		Status:        string(o.Status),
		Items:         make([]dto.LineItemResponse, 0, len(o.Items)),
		Subtotal:      o.Subtotal,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		History:       make([]dto.StatusEntryResponse, 0, len(o.History)),
		Note:          o.Note,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		StartedAt:     o.StartedAt,
		ReadyAt:       o.ReadyAt,
		ServedAt:      o.ServedAt,
		PaidAt:        o.PaidAt,
		CancelledAt:   o.CancelledAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.LineItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
			Note:      it.Note,
		})
	}
	for _, h := range o.History {
		resp.History = append(resp.History, dto.StatusEntryResponse{
			Status:  string(h.Status),
			At:      h.At,
			ActorID: h.ActorID,
			Note:    h.Note,
		})
	}
	if o.Discount.Kind != model.DiscountKindNone {
		resp.Discount = &dto.DiscountResponse{
			Kind:       string(o.Discount.Kind),
			Percentage: o.Discount.Percentage,
			Amount:     o.Discount.Amount,
			Reason:     o.Discount.Reason,
		}
	}
	if o.Payment != nil {
		resp.Payment = &dto.PaymentResponse{
			PaidAt:    o.Payment.PaidAt,
			CashierID: o.Payment.CashierID,
			Tendered:  o.Payment.Tendered,
			Change:    o.Payment.Change,
		}
	}
	return resp
}

func toEventResponse(evt model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		Type:         string(evt.Type),
		HighPriority: evt.HighPriority,
		OccurredAt:   evt.OccurredAt,
	}
	if evt.Order != nil {
		order := toOrderResponse(*evt.Order)
		resp.Order = &order
	}
	if evt.Table != nil {
		table := toTableResponse(*evt.Table)
		resp.Table = &table
	}
	return resp
}

func toPresenceResponse(list []model.Presence, counts map[model.Module]int) dto.PresenceResponse {
	resp := dto.PresenceResponse{
		Counts:      make(map[string]int, len(counts)),
		Connections: make([]dto.PresenceEntry, 0, len(list)),
	}
	for module, n := range counts {
		resp.Counts[string(module)] = n
	}
	for _, p := range list {
		resp.Connections = append(resp.Connections, dto.PresenceEntry{
			ConnectionID: p.ConnectionID,
			StaffID:      p.StaffID,
			Role:         string(p.Role),
			Module:       string(p.Module),
			ConnectedAt:  p.ConnectedAt,
		})
	}
	return resp
}
