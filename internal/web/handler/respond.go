// Package handler holds shared plumbing for the JSON REST handlers:
// response envelopes, error mapping, pagination, and boundary input
// normalization.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Validation answers 400 with a message describing the malformed input.
func Validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// Conflict answers 409 for duplicate-value failures.
func Conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

// NotFound answers 404.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
}

// Forbidden answers 403 with an optional reason tag.
func Forbidden(c *fiber.Ctx, reason string) error {
	body := fiber.Map{"error": "forbidden"}
	if reason != "" {
		body["reason"] = reason
	}

	return c.Status(fiber.StatusForbidden).JSON(body)
}

// Transient answers 503 for store/collaborator timeouts, distinguishable
// from validation failures so callers can retry.
func Transient(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "transient"})
}

// Internal answers 500.
func Internal(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// IsTransient reports whether an error stems from a timed-out or canceled
// outbound call rather than from the request content.
func IsTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Fail maps an unclassified service error: transient failures become 503,
// everything else 500.
func Fail(c *fiber.Ctx, err error) error {
	if IsTransient(err) {
		return Transient(c)
	}

	return Internal(c)
}

// ParseID reads the :id route parameter.
func ParseID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}

	return id, nil
}

// Paginate reads page/pageSize query parameters with sane bounds.
func Paginate(c *fiber.Ctx) (page, pageSize, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize = c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	return page, pageSize, (page - 1) * pageSize
}

// StringList accepts either a JSON array of strings or a single
// comma-separated string. Near-duplicate upstream clients send both shapes;
// normalization happens here, once, instead of per route.
type StringList []string

// UnmarshalJSON implements the dual-shape decoding.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*l = splitTrimmed(asString)
		return nil
	}

	var asList []string
	if err := json.Unmarshal(data, &asList); err != nil {
		return err
	}

	out := make([]string, 0, len(asList))
	for _, item := range asList {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	*l = out

	return nil
}

func splitTrimmed(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Join renders the list back to its stored comma-separated form.
func (l StringList) Join() string {
	return strings.Join(l, ",")
}
