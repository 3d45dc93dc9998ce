package dto_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}

	p := dto.Paginate(rows, 0, 2)
	assert.Equal(t, []int{1, 2}, p.Content)
	assert.Equal(t, 5, p.TotalElements)
	assert.Equal(t, 3, p.TotalPages)

	p = dto.Paginate(rows, 2, 2)
	assert.Equal(t, []int{5}, p.Content)
	assert.Equal(t, 2, p.Number)

	p = dto.Paginate(rows, 7, 2)
	assert.Empty(t, p.Content)
	assert.NotNil(t, p.Content)
	assert.Equal(t, 5, p.TotalElements)
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	page := math.MaxInt / 10
	var p dto.Page[int]
	assert.NotPanics(t, func() { p = dto.Paginate([]int{1, 2, 3}, page, 20) })
	assert.Empty(t, p.Content)
	assert.Equal(t, 3, p.TotalElements)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, page, p.Number)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, dto.PageOffset(0, 20))
	assert.Equal(t, 40, dto.PageOffset(2, 20))
	assert.Equal(t, 0, dto.PageOffset(-1, 20))
	assert.Equal(t, math.MaxInt, dto.PageOffset(math.MaxInt/10, 20))
}

func TestNormalizePage(t *testing.T) {
	page, size := dto.NormalizePage(-3, 0, 20, 200)
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)

	_, size = dto.NormalizePage(1, 1000, 20, 200)
	assert.Equal(t, 200, size)
}

func TestMapPage(t *testing.T) {
	p := dto.MapPage(dto.NewPage([]int{1, 2}, 4, 1, 2), strconv.Itoa)
	assert.Equal(t, []string{"1", "2"}, p.Content)
	assert.Equal(t, 4, p.TotalElements)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 1, p.Number)
}
