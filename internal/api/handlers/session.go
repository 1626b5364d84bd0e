package handlers

import (
	"github.com/amaumene/imagesearch/internal/controllers"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionHandler exposes one search session over HTTP
type SessionHandler struct {
	session *controllers.SessionController
	logger  *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *controllers.SessionController, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		session: session,
		logger:  logger,
	}
}

// SearchRequest is the body of POST /api/search
type SearchRequest struct {
	Query string `json:"query"`
}

// FavoritesResponse lists the stored favorites
type FavoritesResponse struct {
	Items []models.SearchItem `json:"items"`
	Count int                 `json:"count"`
}

// State returns the last published session state
func (h *SessionHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.session.State())
}

// Search submits a new query
func (h *SessionHandler) Search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.session.SubmitQuery(c.UserContext(), req.Query); err != nil {
		return HTTPError(err)
	}
	return c.JSON(h.session.State())
}

// Next fetches the next pages of the current query
func (h *SessionHandler) Next(c *fiber.Ctx) error {
	if err := h.session.OnScrollEnd(c.UserContext()); err != nil {
		return HTTPError(err)
	}
	return c.JSON(h.session.State())
}

// Refresh re-fetches the current pages
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	if err := h.session.Refresh(c.UserContext()); err != nil {
		return HTTPError(err)
	}
	return c.JSON(h.session.State())
}

// Toggle flips the saved status of the posted item. The item is taken from
// the current results when its id is listed there; otherwise the posted
// fields must derive the posted id.
func (h *SessionHandler) Toggle(c *fiber.Ctx) error {
	var posted models.SearchItem
	if err := c.BodyParser(&posted); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if posted.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id is required")
	}

	item, err := h.resolveItem(posted)
	if err != nil {
		return err
	}

	updated, err := h.session.ToggleItem(c.UserContext(), item)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(updated)
}

func (h *SessionHandler) resolveItem(posted models.SearchItem) (models.SearchItem, error) {
	for _, item := range h.session.State().Items {
		if item.ID == posted.ID {
			return item, nil
		}
	}

	if !posted.Kind.Valid() {
		return posted, fiber.NewError(fiber.StatusBadRequest, "kind must be IMAGE or VIDEO")
	}
	if posted.ID != models.ItemID(posted.Kind, posted.ThumbnailURL, posted.SiteName, posted.Timestamp) {
		h.logger.WithField("id", posted.ID).Warn("Posted item id does not match its fields")
		return posted, fiber.NewError(fiber.StatusBadRequest, "id does not match item")
	}
	return posted, nil
}

// ReloadSaved re-stamps the current items against the stored favorites
func (h *SessionHandler) ReloadSaved(c *fiber.Ctx) error {
	if err := h.session.ReloadSavedStatus(c.UserContext()); err != nil {
		return HTTPError(err)
	}
	return c.JSON(h.session.State())
}

// Favorites lists the stored favorites
func (h *SessionHandler) Favorites(c *fiber.Ctx) error {
	items, err := h.session.ListFavorites(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list favorites")
		return HTTPError(err)
	}
	return c.JSON(FavoritesResponse{Items: items, Count: len(items)})
}

// RemoveFavorite deletes a favorite by id and returns the remaining ones
func (h *SessionHandler) RemoveFavorite(c *fiber.Ctx) error {
	items, err := h.session.RemoveFavorite(c.UserContext(), c.Params("id"))
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(FavoritesResponse{Items: items, Count: len(items)})
}
