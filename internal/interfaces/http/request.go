package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	reasonInvalidQuery   = "invalid-query"
	reasonInvalidBody    = "invalid-body"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	upper    = cases.Upper(language.Und)
)

// parseBody decodifica y valida el cuerpo JSON.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.InvalidPayload(reasonInvalidBody)
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.InvalidPayload(strings.ToLower(verrs[0].Field()) + "-" + verrs[0].Tag())
		}
		return domain.InvalidPayload(reasonInvalidBody)
	}
	return nil
}

// enumValue normaliza valores de enumeración (inbound → INBOUND).
func enumValue(s string) string {
	return upper.String(strings.TrimSpace(s))
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		d, derr := time.Parse("2006-01-02", raw)
		if derr != nil {
			return nil, domain.InvalidPayload(reasonInvalidQuery + ":" + key)
		}
		t = d
	}
	t = t.UTC()
	return &t, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.InvalidPayload(reasonInvalidQuery + ":" + key)
	}
	return n, nil
}

func queryBool(c *fiber.Ctx, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.InvalidPayload(reasonInvalidQuery + ":" + key)
	}
	return b, nil
}

// queryMulti devuelve todas las apariciones de key (?sort=a&sort=b,desc).
func queryMulti(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range c.Context().QueryArgs().PeekMulti(key) {
		if s := strings.TrimSpace(string(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// pageParams lee page (base 0) y size.
func pageParams(c *fiber.Ctx) (page, size int, err error) {
	if page, err = queryInt(c, "page", 0); err != nil {
		return 0, 0, err
	}
	if size, err = queryInt(c, "size", 0); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}
