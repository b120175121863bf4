package controllers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorRendersSentinel(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantSlug   string
	}{
		{name: "not found", err: fiber.NewError(fiber.StatusNotFound, "subscription not found"), wantStatus: fiber.StatusNotFound, wantSlug: "not_found"},
		{name: "forbidden", err: fiber.NewError(fiber.StatusForbidden, "you do not own this product"), wantStatus: fiber.StatusForbidden, wantSlug: "forbidden"},
		{name: "bad request", err: fiber.NewError(fiber.StatusBadRequest, "started_at must be formatted YYYY-MM-DD"), wantStatus: fiber.StatusBadRequest, wantSlug: "bad_request"},
		{name: "storage failure", err: fiber.NewError(fiber.StatusInternalServerError, "could not load subscription"), wantStatus: fiber.StatusInternalServerError, wantSlug: "internal_server_error"},
		{name: "plain error", err: errors.New("broken pipe"), wantStatus: fiber.StatusInternalServerError, wantSlug: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", func(c *fiber.Ctx) error {
				return respondError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantSlug)
		})
	}
}

// A lookup failure must surface as a non-nil error so the caller's guard
// fires and the handler never touches the missing record. The panic mode
// this guards against was a loader handing back (nil, nil) after writing
// the 404 itself.
func TestLookupFailureSkipsHandlerBody(t *testing.T) {
	app := fiber.New()
	app.Get("/subscriptions/:id", func(c *fiber.Ctx) error {
		load := func() (*struct{ Name string }, error) {
			return nil, fiber.NewError(fiber.StatusNotFound, "subscription not found")
		}
		sub, err := load()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"name": sub.Name})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/subscriptions/9000", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "not_found")
	assert.Contains(t, string(body), "subscription not found")
}

func TestParseStartDate(t *testing.T) {
	got, err := parseStartDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = parseStartDate("")
	require.NoError(t, err)
	now := time.Now().UTC()
	assert.Equal(t, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), got)
}

func TestParseStartDateRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"15.03.2024", "2024-3-15", "not-a-date"} {
		_, err := parseStartDate(raw)
		require.Error(t, err, raw)

		var fe *fiber.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	}
}

func TestParseIDParamRejectsGarbage(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for _, raw := range []string{"abc", "0", "-4"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/"+raw, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, raw)
	}
}
