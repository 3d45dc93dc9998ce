package dto

import "math"

// Límites de paginación por defecto.
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page página de resultados con la forma que esperan los clientes HTTP
// (content, totalElements, totalPages, size, number). number empieza en 0.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Size          int `json:"size"`
	Number        int `json:"number"`
}

// NewPage arma la página a partir del contenido ya recortado y el total sin paginar.
func NewPage[T any](content []T, total, page, size int) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}
}

// Paginate recorta rows en memoria. Una página fuera de rango devuelve contenido vacío con el total correcto.
func Paginate[T any](rows []T, page, size int) Page[T] {
	total := len(rows)
	start := PageOffset(page, size)
	if start >= total {
		return NewPage([]T{}, total, page, size)
	}
	end := start + size
	if end > total {
		end = total
	}
	return NewPage(rows[start:end], total, page, size)
}

// PageOffset devuelve page*size. Si el producto desborda int satura en math.MaxInt,
// que queda fuera de rango para cualquier listado.
func PageOffset(page, size int) int {
	if page <= 0 || size <= 0 {
		return 0
	}
	if page > math.MaxInt/size {
		return math.MaxInt
	}
	return page * size
}

// MapPage convierte el contenido de una página conservando sus metadatos.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[R]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Size:          p.Size,
		Number:        p.Number,
	}
}

// NormalizePage aplica valores por defecto: page negativa → 0, size fuera de rango → def o max.
func NormalizePage(page, size, def, max int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
