package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"taskdeck/internal/auth"
	"taskdeck/internal/domain"
	"taskdeck/internal/repository"
	"taskdeck/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tasks  service.TaskService
	issuer *auth.Issuer
	logger *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, issuer *auth.Issuer, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		tasks:  tasks,
		issuer: issuer,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	// keep unmatched routes on the JSON envelope instead of gin's plain-text 404
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	router.GET("/", h.home)
	router.GET("/ping", h.ping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", requireToken(h.issuer, auth.KindAccess), h.me)
		authGroup.POST("/refresh", requireToken(h.issuer, auth.KindRefresh), h.refresh)
	}

	api := router.Group("/api", requireToken(h.issuer, auth.KindAccess))
	{
		api.GET("/tasks", h.listTasks)
		api.POST("/tasks", h.createTask)
		api.GET("/tasks/:id", h.getTask)
		api.PUT("/tasks/:id", h.updateTask)
		api.DELETE("/tasks/:id", h.deleteTask)
		api.PATCH("/tasks/:id/toggle", h.toggleTask)
	}
}

func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Welcome to the taskdeck API",
		"endpoints": []string{"/ping", "/auth", "/api/tasks"},
	})
}

func (h *Handler) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	tokens, err := h.issueTokenPair(user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.logger.WithField("username", user.Username).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"message":       "User created successfully",
		"user":          userToResponse(user),
		"access_token":  tokens.access,
		"refresh_token": tokens.refresh,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	tokens, err := h.issueTokenPair(user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.logger.WithField("username", user.Username).Info("user logged in")
	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"user":          userToResponse(user),
		"access_token":  tokens.access,
		"refresh_token": tokens.refresh,
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

func (h *Handler) refresh(c *gin.Context) {
	accessToken, err := h.issuer.AccessToken(currentUserID(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (h *Handler) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}

	task, err := h.tasks.Create(c.Request.Context(), currentUserID(c), req.Title, description, completed)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    taskToResponse(task),
	})
}

func (h *Handler) listTasks(c *gin.Context) {
	page, perPage, ve := parsePagination(c)

	var completed *bool
	if raw, ok := c.GetQuery("completed"); ok {
		value := strings.ToLower(raw) == "true"
		completed = &value
	}

	if len(ve) > 0 {
		h.renderError(c, ve)
		return
	}

	tasks, pageInfo, err := h.tasks.List(c.Request.Context(), currentUserID(c), page, perPage, completed)
	if err != nil {
		h.renderError(c, err)
		return
	}

	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = taskToResponse(&tasks[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
		"pagination": gin.H{
			"total":    pageInfo.Total,
			"pages":    pageInfo.Pages,
			"page":     pageInfo.Page,
			"per_page": pageInfo.PerPage,
			"has_next": pageInfo.HasNext,
			"has_prev": pageInfo.HasPrev,
		},
	})
}

func parsePagination(c *gin.Context) (page, perPage int, ve service.ValidationError) {
	ve = service.ValidationError{}
	page, perPage = 1, 10

	if raw, ok := c.GetQuery("page"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			ve["page"] = append(ve["page"], "must be an integer")
		} else {
			page = v
		}
	}
	if raw, ok := c.GetQuery("per_page"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			ve["per_page"] = append(ve["per_page"], "must be an integer")
		} else {
			perPage = v
		}
	}
	return page, perPage, ve
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToResponse(task)})
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), currentUserID(c), id, service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    taskToResponse(task),
	})
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *Handler) toggleTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Toggle(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	message := "Task marked as not completed"
	if task.Completed {
		message = "Task marked as completed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"task":    taskToResponse(task),
	})
}

// taskID parses the path parameter. A non-numeric id cannot name any task, so
// it renders the same 404 a missing task would.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return 0, false
	}
	return id, true
}

type tokenPair struct {
	access  string
	refresh string
}

func (h *Handler) issueTokenPair(userID int64) (tokenPair, error) {
	access, err := h.issuer.AccessToken(userID)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := h.issuer.RefreshToken(userID)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{access: access, refresh: refresh}, nil
}

// renderError maps service and repository errors onto the response envelope.
// Unexpected errors are logged and surfaced as a generic 500.
func (h *Handler) renderError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve})
		return
	}

	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is already taken"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is already in use"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	default:
		h.logger.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an internal error occurred"})
	}
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	UserID      int64  `json:"user_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}
