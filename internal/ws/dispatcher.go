package ws

import (
	"context"

	"agri_chat/internal/repository"
	"agri_chat/pkg/logger"
)

// Dispatcher рассылает событие всем живым каналам всех текущих участников
// комнаты. Доставка best-effort: сбой записи в отдельный канал логируется и
// не прерывает ни рассылку остальным, ни вызвавшую операцию - офлайн-участник
// увидит состояние при следующем чтении истории.
type Dispatcher struct {
	memberships repository.MembershipRepository
	registry    *Registry
	log         logger.Logger
}

func NewDispatcher(memberships repository.MembershipRepository, registry *Registry, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		memberships: memberships,
		registry:    registry,
		log:         log,
	}
}

func (d *Dispatcher) Broadcast(ctx context.Context, roomID int64, event any) {
	// Членство читается заново на каждое событие: между отправками состав
	// комнаты мог измениться
	usernames, err := d.memberships.ListMemberUsernames(ctx, roomID)
	if err != nil {
		d.log.Error("Broadcast: failed to resolve room members", "room_id", roomID, "error", err)
		return
	}

	for _, username := range usernames {
		for _, ch := range d.registry.Channels(username) {
			if err := ch.Send(event); err != nil {
				d.log.Warn("WS send failed", "username", username, "room_id", roomID, "error", err)
			}
		}
	}
}
