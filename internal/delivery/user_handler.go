package delivery

import (
	"net/http"
	"strconv"

	"user_service/internal/domain"
	"user_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase usecase.UserUseCase
	links   LinkBuilder
	log     *logrus.Logger
}

func NewUserHandler(uc usecase.UserUseCase, links LinkBuilder, logger *logrus.Logger) (*UserHandler, error) {
	if err := registerValidators(); err != nil {
		logger.Errorf("Failed to set up request validation: %v", err)
		return nil, err
	}
	return &UserHandler{
		useCase: uc,
		links:   links,
		log:     logger,
	}, nil
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter) {
	users := router.Group(usersPath)
	{
		users.POST("", h.CreateUser)
		users.GET("", h.GetAllUsers)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// bindJSON binds the request body into dst and writes a 400 response when
// binding or validation fails.
func (h *UserHandler) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if fields, ok := fieldErrors(err); ok {
		h.log.Warnf("Validation failed for %s %s: %v", c.Request.Method, c.Request.URL.Path, fields)
		c.JSON(http.StatusBadRequest, fields)
		return false
	}
	h.log.Warnf("Failed to bind JSON for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	errorJSON(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warnf("Invalid user ID parameter: %s", idStr)
		errorJSON(c, http.StatusBadRequest, "Invalid user ID format")
		return 0, false
	}
	return id, true
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var body createUserRequest
	if !h.bindJSON(c, &body) {
		return
	}

	created, err := h.useCase.CreateUser(c.Request.Context(), &domain.UserRequest{
		Name:  body.Name,
		Email: body.Email,
		Age:   ageValue(body.Age),
	})
	if err != nil {
		h.log.Errorf("Failed to create user '%s': %v", body.Email, err)
		domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.links.ToModel(*created))
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.useCase.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get user by ID %d: %v", id, err)
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.links.ToModel(*user))
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.useCase.GetAllUsers(c.Request.Context())
	if err != nil {
		h.log.Warnf("Failed to list users: %v", err)
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.links.ToModels(users))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var body updateUserRequest
	if !h.bindJSON(c, &body) {
		return
	}

	updated, err := h.useCase.UpdateUser(c.Request.Context(), id, &domain.UserRequest{
		Name:  body.Name,
		Email: body.Email,
		Age:   ageValue(body.Age),
	})
	if err != nil {
		h.log.Warnf("Failed to update user ID %d: %v", id, err)
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.links.ToModel(*updated))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteUser(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete user ID %d: %v", id, err)
		domainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
