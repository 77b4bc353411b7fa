package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"github.com/i474232898/epaper-weather-display/internal/battery"
	"github.com/i474232898/epaper-weather-display/internal/store"
)

var validate = validator.New()

// FrameSource is the read side of the frame store.
type FrameSource interface {
	Latest() (store.Frame, error)
	Get(id uuid.UUID) (store.Frame, error)
	List(limit int) []store.Frame
}

// BatterySource exposes the last sample and the persisted charge log.
type BatterySource interface {
	LastReading() (battery.Reading, bool)
}

// HistorySource reads the persisted charge log.
type HistorySource interface {
	History() *battery.History
}

// Deps are the collaborators behind the preview API. Nil fields disable their routes.
type Deps struct {
	Frames  FrameSource
	Battery BatterySource
	History HistorySource
	Metrics http.Handler
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	v1 := app.Group("/api/v1")

	if deps.Frames != nil {
		registerFrameRoutes(v1, deps.Frames)
	}

	v1.Get("/battery", func(c *fiber.Ctx) error {
		resp := batteryResponse{Status: battery.StatusUnknown}
		if deps.Battery != nil {
			if r, ok := deps.Battery.LastReading(); ok {
				resp.Reading = &r
				if r.Known() {
					resp.Status = r.Status()
				}
			}
		}
		if deps.History != nil {
			h := deps.History.History()
			if h.LastChargingTime != nil {
				resp.LastChargingTime = &h.LastChargingTime.Time
				resp.LastCharge = battery.FormatLastCharge(h.LastChargingTime.Time)
			}
			resp.History = h.ChargingHistory
		}
		return c.JSON(resp)
	})
}

type batteryResponse struct {
	Reading          *battery.Reading `json:"reading"`
	Status           battery.Status   `json:"status"`
	LastChargingTime *time.Time       `json:"last_charging_time"`
	LastCharge       string           `json:"last_charge,omitempty"`
	History          []battery.Entry  `json:"charging_history"`
}

func registerFrameRoutes(v1 fiber.Router, frames FrameSource) {
	v1.Get("/frames", func(c *fiber.Ctx) error {
		var q listQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		limit := 0
		if q.Limit != nil {
			limit = *q.Limit
		}
		list := frames.List(limit)
		return c.JSON(fiber.Map{
			"count":  len(list),
			"frames": list,
		})
	})

	v1.Get("/frames/latest", func(c *fiber.Ctx) error {
		f, err := frames.Latest()
		if err != nil {
			return frameError(err)
		}
		return sendPNG(c, f)
	})

	v1.Get("/frames/:id", func(c *fiber.Ctx) error {
		f, err := lookupFrame(c, frames)
		if err != nil {
			return err
		}
		return c.JSON(f)
	})

	v1.Get("/frames/:id/image", func(c *fiber.Ctx) error {
		f, err := lookupFrame(c, frames)
		if err != nil {
			return err
		}
		return sendPNG(c, f)
	})
}

func lookupFrame(c *fiber.Ctx, frames FrameSource) (store.Frame, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return store.Frame{}, fiber.NewError(fiber.StatusBadRequest, "invalid frame id")
	}
	f, err := frames.Get(id)
	if err != nil {
		return store.Frame{}, frameError(err)
	}
	return f, nil
}

func frameError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no frame rendered yet")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read frame")
}

func sendPNG(c *fiber.Ctx, f store.Frame) error {
	if len(f.PNG) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "frame has no image")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set("X-Frame-Id", f.ID.String())
	return c.Send(f.PNG)
}

// listQuery holds query parameters for the frame list endpoint. A nil Limit
// lists every stored frame.
type listQuery struct {
	Limit *int `validate:"omitempty,min=1,max=100"`
}

func (q *listQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("limit")
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("limit must be an integer")
	}
	q.Limit = &n
	return nil
}
