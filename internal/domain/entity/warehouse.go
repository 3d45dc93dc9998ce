package entity

import "time"

// Warehouse representa una bodega. Su CRUD es externo al ledger; aquí solo se lee.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
