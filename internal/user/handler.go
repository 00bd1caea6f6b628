package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/httpx"
)

type Handler struct {
	service *Service
	issuer  *auth.Issuer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type sessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func NewHandler(service *Service, issuer *auth.Issuer) *Handler {
	return &Handler{service: service, issuer: issuer}
}

func (h *Handler) RegisterRoutes(r fiber.Router, g httpx.Guards) {
	g = g.Normalize()
	r.Post("/sign-in", g.RateLimit, h.login)
	r.Post("/sign-up", g.RateLimit, h.register)
	r.Get("/profile", g.Auth, h.getProfile)
	r.Patch("/profile", g.Auth, h.updateProfile)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}

	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return h.session(c, fiber.StatusOK, u)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}

	created, err := h.service.Register(c.UserContext(), RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
	})
	if err != nil {
		return httpx.Fail(c, err)
	}
	return h.session(c, fiber.StatusCreated, created)
}

func (h *Handler) session(c *fiber.Ctx, status int, u User) error {
	token, err := h.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return httpx.Fail(c, err)
	}
	resp := sessionResponse{Token: token, User: u}
	if status == fiber.StatusCreated {
		return httpx.Created(c, resp)
	}
	return httpx.OK(c, resp)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, u)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := auth.UserIDFromCtx(c)
	if err != nil {
		return httpx.Fail(c, err)
	}
	payload := new(profileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Fail(c, httpx.ErrInvalidBody)
	}
	u, err := h.service.UpdateProfile(c.UserContext(), userID, ProfileUpdate{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
	})
	if err != nil {
		return httpx.Fail(c, err)
	}
	return httpx.OK(c, u)
}
