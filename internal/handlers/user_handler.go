package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"
)

// UserHandler handles HTTP requests for user accounts. Users are looked
// up by id or email query parameter; every response is sanitized.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Put("/", h.HandleUpdateUser)
	userRoutes.Delete("/", h.HandleDeleteUser)
}

// HandleGetUsers fetches one user when an id or email is given, all
// users otherwise.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	id, email := c.Query("id"), c.Query("email")
	if id == "" && email == "" {
		users, err := h.service.GetAll()
		if err != nil {
			return respondError(c, err)
		}
		return respondData(c, fiber.StatusOK, users)
	}

	user, err := h.service.Get(id, email)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return respondError(c, apperrors.Wrap(apperrors.KindValidation, err, "invalid request body"))
	}

	user, err := h.service.Register(&models.User{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, user)
}

// HandleUpdateUser applies a partial update to the user identified by
// the id or email query parameter.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, email := c.Query("id"), c.Query("email")
	if id == "" && email == "" {
		return respondError(c, apperrors.E(apperrors.KindValidation, "an id or email identifier is required"))
	}

	var req services.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.Wrap(apperrors.KindValidation, err, "invalid request body"))
	}

	user, err := h.service.Update(id, email, &req)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, user)
}

// HandleDeleteUser deletes the user identified by the id or email query
// parameter and echoes the deleted record.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, email := c.Query("id"), c.Query("email")
	if id == "" && email == "" {
		return respondError(c, apperrors.E(apperrors.KindValidation, "an id or email identifier is required"))
	}

	user, err := h.service.Delete(id, email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}
