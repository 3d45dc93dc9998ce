package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// requireActor exige identidad y rol.
func requireActor(actor *entity.Actor) error {
	if !actor.HasRole() {
		return domain.ErrForbidden
	}
	return nil
}

// authorizeEventWrite: admin/manager cualquier tipo; seller solo OUTBOUND.
func authorizeEventWrite(actor *entity.Actor, eventType string) error {
	if actor.IsManagement() {
		return nil
	}
	if actor.IsSeller() && eventType == entity.EventTypeOutbound {
		return nil
	}
	return domain.ErrForbidden
}

// authorizeManagement: solo admin/manager.
func authorizeManagement(actor *entity.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsManagement() {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizeWarehouseRead aplica la regla de lectura común: seller debe filtrar por bodega.
func AuthorizeWarehouseRead(actor *entity.Actor, warehouseIDs ...string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsManagement() {
		return nil
	}
	if !actor.IsSeller() {
		return domain.ErrForbidden
	}
	for _, id := range warehouseIDs {
		if id != "" {
			return nil
		}
	}
	return domain.ErrForbidden
}
