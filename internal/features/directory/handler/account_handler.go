package handler

import (
	"parcel-ledger/internal/core/auth"
	"parcel-ledger/internal/core/server"
	"parcel-ledger/internal/features/directory/ports"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for registration, login and profiles.
type AccountHandler struct {
	service ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// AddressRequest is an inline address.
type AddressRequest struct {
	Country    string `json:"country" validate:"required,max=45"`
	City       string `json:"city" validate:"required,max=45"`
	PostalCode string `json:"postal_code" validate:"required,max=45"`
	Street     string `json:"street" validate:"required,max=45"`
	Details    string `json:"details" validate:"max=45"`
}

// RegisterRequest represents the request body for client self-registration.
type RegisterRequest struct {
	Username  string          `json:"username" validate:"required,max=150"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FirstName string          `json:"first_name" validate:"max=150"`
	LastName  string          `json:"last_name" validate:"max=150"`
	Phone     string          `json:"phone" validate:"max=45"`
	Address   *AddressRequest `json:"address"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents the request body for a profile edit.
type UpdateProfileRequest struct {
	Email            *string `json:"email" validate:"omitempty,email"`
	Password         *string `json:"password" validate:"omitempty,min=8"`
	FirstName        *string `json:"first_name" validate:"omitempty,max=150"`
	LastName         *string `json:"last_name" validate:"omitempty,max=150"`
	Phone            *string `json:"phone" validate:"omitempty,max=45"`
	DefaultAddressID *uint64 `json:"default_address_id"`
}

// Register handles POST /auth/register.
// @Summary Register a client
// @Description Creates a client account, optionally with a default address.
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body RegisterRequest true "Account"
// @Success 201 {object} domain.User
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /auth/register [post]
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	in := ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if req.Address != nil {
		in.Address = &ports.AddressInput{
			Country:    req.Address.Country,
			City:       req.Address.City,
			PostalCode: req.Address.PostalCode,
			Street:     req.Address.Street,
			Details:    req.Address.Details,
		}
	}

	user, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /auth/login.
// @Summary Log in
// @Description Exchanges email and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} ports.Session
// @Failure 401 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /auth/login [post]
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	session, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Me handles GET /users/me.
// @Summary Current profile
// @Tags Users
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	actor := auth.ActorFrom(c)
	var id uint64
	if actor != nil {
		id = actor.UserID
	}
	user, err := h.service.GetUser(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// GetUser handles GET /users/:id.
// @Summary Get a profile
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.User
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *AccountHandler) GetUser(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.UserContext(), auth.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateProfile handles PATCH /users/:id.
// @Summary Edit a profile
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param profile body UpdateProfileRequest true "Changed fields"
// @Success 200 {object} domain.User
// @Failure 403 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [patch]
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := server.Bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), auth.ActorFrom(c), id, ports.ProfilePatch{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		DefaultAddressID: req.DefaultAddressID,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /users/:id.
// @Summary Delete a user
// @Description Fails with 409 while the user is sender or receiver of any parcel.
// @Tags Users
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *AccountHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := server.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.UserContext(), auth.ActorFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListClients handles GET /clients.
// @Summary List clients
// @Tags Users
// @Produce json
// @Success 200 {array} domain.User
// @Failure 403 {object} server.ErrorResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *AccountHandler) ListClients(c *fiber.Ctx) error {
	users, err := h.service.ListClients(c.UserContext(), auth.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(users)
}
