package api

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/creatorstation/tracker/internal/codec"
	"github.com/creatorstation/tracker/internal/models"
	"github.com/creatorstation/tracker/internal/notice"
	"github.com/creatorstation/tracker/internal/tracker"
	"github.com/creatorstation/tracker/pkg/web"
)

// Handler adapts tracker.Store to HTTP for a browser front end.
type Handler struct {
	store   *tracker.Store
	notices *notice.Center
	log     *zap.Logger
}

func NewHandler(store *tracker.Store, notices *notice.Center, l *zap.Logger) *Handler {
	return &Handler{store: store, notices: notices, log: l.Named("api")}
}

func (h *Handler) MountController(router fiber.Router) {
	router.Get("/health", h.Health)

	router.Get("/influencers", h.ListInfluencers)
	router.Post("/influencers", h.CreateInfluencer)
	router.Put("/influencers/:id", h.UpdateInfluencer)
	router.Delete("/influencers/:id", h.DeleteInfluencer)
	router.Post("/influencers/:id/paid", h.MarkPaid)
	router.Post("/influencers/:id/duplicate", h.DuplicateInfluencer)
	router.Post("/validate", h.ValidateDraft)

	router.Get("/filter", h.GetFilter)
	router.Put("/filter", h.SetFilter)

	router.Get("/export", h.Export)
	router.Post("/import", h.Import)
	router.Post("/import/url", h.ImportURL)

	router.Get("/notices", h.ListNotices)
	router.Delete("/notices/:id", h.DismissNotice)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"influencers": len(h.store.Records()),
	})
}

func (h *Handler) ListInfluencers(c *fiber.Ctx) error {
	var filter models.FilterStatus
	if raw := c.Query("status"); raw != "" {
		f, ok := models.ParseFilterStatus(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown status " + strconv.Quote(raw),
			})
		}
		filter = f
	}

	return c.JSON(fiber.Map{"data": h.store.View(filter)})
}

func (h *Handler) CreateInfluencer(c *fiber.Ctx) error {
	var body models.Draft
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rec, err := h.store.Create(c.UserContext(), body)
	return h.respond(c, fiber.StatusCreated, rec, err)
}

func (h *Handler) UpdateInfluencer(c *fiber.Ctx) error {
	var body models.Draft
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rec, err := h.store.Update(c.UserContext(), c.Params("id"), body)
	return h.respond(c, fiber.StatusOK, rec, err)
}

func (h *Handler) DeleteInfluencer(c *fiber.Ctx) error {
	id := c.Params("id")

	found, err := h.store.Delete(c.UserContext(), id)
	if !found && err == nil {
		err = &tracker.NotFoundError{ID: id}
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{"deleted": id}, err)
}

func (h *Handler) MarkPaid(c *fiber.Ctx) error {
	rec, err := h.store.MarkPaid(c.UserContext(), c.Params("id"))
	return h.respond(c, fiber.StatusOK, rec, err)
}

func (h *Handler) DuplicateInfluencer(c *fiber.Ctx) error {
	rec, err := h.store.Duplicate(c.UserContext(), c.Params("id"))
	return h.respond(c, fiber.StatusCreated, rec, err)
}

func (h *Handler) ValidateDraft(c *fiber.Ctx) error {
	var body models.Draft
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	errs := tracker.Validate(body)
	return c.JSON(fiber.Map{
		"isValid": errs.Valid(),
		"errors":  errs,
	})
}

func (h *Handler) GetFilter(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"filter": h.store.Filter()}})
}

func (h *Handler) SetFilter(c *fiber.Ctx) error {
	var body FilterBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	f := models.FilterStatus(body.Filter)
	err := h.store.SetFilter(c.UserContext(), f)
	return h.respond(c, fiber.StatusOK, fiber.Map{"filter": f}, err)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	data, err := codec.Marshal(h.store.Records())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Attachment(codec.FileName(timeNow()))
	c.Context().SetContentType(fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(data)
}

// Import accepts either a multipart upload in the "file" field or the raw
// JSON document as the request body.
func (h *Handler) Import(c *fiber.Ctx) error {
	var src io.Reader
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		file, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		fileContent, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		defer fileContent.Close()
		src = fileContent
	} else {
		src = bytes.NewReader(c.Body())
	}

	return h.importFrom(c, src)
}

// ImportURL downloads an export document and imports it.
func (h *Handler) ImportURL(c *fiber.Ctx) error {
	var body ImportURLBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	data, err := web.FetchDocument(c.UserContext(), body.URL)
	if err != nil {
		h.log.Warn("Remote import fetch failed", zap.String("url", body.URL), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return h.importFrom(c, bytes.NewReader(data))
}

func (h *Handler) importFrom(c *fiber.Ctx, src io.Reader) error {
	n, err := h.store.Import(c.UserContext(), src)
	if err == nil {
		h.notices.Push(notice.LevelInfo, "Imported "+strconv.Itoa(n)+" influencers")
	}
	return h.respond(c, fiber.StatusOK, fiber.Map{"imported": n}, err)
}

func (h *Handler) ListNotices(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.notices.Active()})
}

func (h *Handler) DismissNotice(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid notice id",
		})
	}

	if !h.notices.Dismiss(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "notice not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respond maps tracker errors to status codes. A failed durable write still
// answers with the payload, plus a warning that is also pushed as a notice.
func (h *Handler) respond(c *fiber.Ctx, status int, payload interface{}, err error) error {
	var (
		validationErr  *tracker.ValidationError
		notFoundErr    *tracker.NotFoundError
		formatErr      *tracker.ImportFormatError
		persistenceErr *tracker.PersistenceError
	)

	switch {
	case err == nil:
		return c.Status(status).JSON(fiber.Map{"data": payload})

	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Please fix the highlighted fields",
			"fields": validationErr.Fields,
		})

	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.As(err, &formatErr):
		h.notices.Push(notice.LevelError, err.Error())
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.Is(err, tracker.ErrImportInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})

	case errors.As(err, &persistenceErr):
		n := h.notices.Push(notice.LevelWarning, err.Error())
		return c.Status(status).JSON(fiber.Map{
			"data":    payload,
			"warning": n.Message,
		})
	}

	h.log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
