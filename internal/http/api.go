package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Panjavaishnavi/news-app/internal/apperr"
	"github.com/Panjavaishnavi/news-app/internal/auth"
	"github.com/Panjavaishnavi/news-app/internal/domain"
	"github.com/Panjavaishnavi/news-app/internal/service"
	"github.com/Panjavaishnavi/news-app/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	content service.ContentService
	tokens  *auth.TokenManager
	storage storage.Service
	logger  *logrus.Logger
}

func NewHandler(authSvc service.AuthService, content service.ContentService, tokens *auth.TokenManager, store storage.Service, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:    authSvc,
		content: content,
		tokens:  tokens,
		storage: store,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", h.signup)
			authRoutes.POST("/login", h.login)
			authRoutes.GET("/me", h.authenticate(), h.me)
		}

		news := api.Group("/news")
		{
			news.GET("", h.listNews)
			news.GET("/:id", h.getNews)
			news.GET("/category/:id", h.getNewsByCategory)
			news.POST("", h.authenticate(), h.requireAdmin(), h.createNews)
			news.PUT("/:id", h.authenticate(), h.requireAdmin(), h.updateNews)
			news.DELETE("/:id", h.authenticate(), h.requireAdmin(), h.deleteNews)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.listCategories)
			categories.GET("/:id", h.getCategory)
			categories.POST("", h.authenticate(), h.requireAdmin(), h.createCategory)
			categories.PUT("/:id", h.authenticate(), h.requireAdmin(), h.updateCategory)
			categories.DELETE("/:id", h.authenticate(), h.requireAdmin(), h.deleteCategory)
		}

		api.POST("/upload", h.authenticate(), h.requireAdmin(), h.uploadImage)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type newsRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id" binding:"required"`
}

type categoryRequest struct {
	Title string `json:"title" binding:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type newsResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	CategoryID    int64   `json:"category_id"`
	UserID        int64   `json:"user_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	CategoryTitle *string `json:"category_title"`
	Author        *string `json:"author"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user, token))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user, token))
}

// me returns the profile behind the presented token, letting clients
// validate a stored token without re-authenticating.
func (h *Handler) me(c *gin.Context) {
	claims := callerClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
		return
	}

	user, err := h.auth.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"username": user.Username,
		"email":    user.Email,
		"role":     string(user.Role),
	})
}

func (h *Handler) listNews(c *gin.Context) {
	items, err := h.content.ListNews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newsListToResponse(items))
}

func (h *Handler) getNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	news, err := h.content.GetNewsByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newsToResponse(*news))
}

// getNewsByCategory does not check the category exists; an unknown id
// yields 200 with an empty list.
func (h *Handler) getNewsByCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.content.GetNewsByCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newsListToResponse(items))
}

func (h *Handler) createNews(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	claims := callerClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
		return
	}

	news, err := h.content.CreateNews(c.Request.Context(), newsInputFromRequest(req), claims.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newsToResponse(*news))
}

func (h *Handler) updateNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	news, err := h.content.UpdateNews(c.Request.Context(), id, newsInputFromRequest(req))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newsToResponse(*news))
}

func (h *Handler) deleteNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.content.DeleteNews(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "News removed"})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.content.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, cat := range categories {
		resp[i] = categoryResponse{ID: cat.ID, Title: cat.Title}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	category, err := h.content.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse{ID: category.ID, Title: category.Title})
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	category, err := h.content.CreateCategory(c.Request.Context(), req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse{ID: category.ID, Title: category.Title})
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	category, err := h.content.UpdateCategory(c.Request.Context(), id, req.Title)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse{ID: category.ID, Title: category.Title})
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.content.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category removed"})
}

func (h *Handler) uploadImage(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Storage service not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Image file is required"}})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Close()

	url, err := h.storage.UploadImage(
		c.Request.Context(),
		file,
		filepath.Ext(fileHeader.Filename),
		headerContentType(fileHeader),
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// fail maps service errors to responses. Validation surfaces its messages;
// anything unexpected is logged and collapsed to a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Messages})
		return
	}

	h.logger.WithError(err).
		WithField("method", c.Request.Method).
		WithField("path", c.Request.URL.Path).
		Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return id, true
}

// validationMessages flattens binding failures into the full set of
// violated rules, phrased like the API's historical responses.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request body"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, messageForField(fe.Field()))
	}
	return messages
}

func messageForField(field string) string {
	switch field {
	case "Name":
		return "Name is required"
	case "Username":
		return "Username is required"
	case "Email":
		return "Please include a valid email"
	case "Password":
		return "Please enter a password with 6 or more characters"
	case "Title":
		return "Title is required"
	case "Description":
		return "Description is required"
	case "CategoryID":
		return "Category ID is required"
	default:
		return field + " is invalid"
	}
}

func headerContentType(fh *multipart.FileHeader) string {
	if fh.Header == nil {
		return ""
	}
	return fh.Header.Get("Content-Type")
}

func newsInputFromRequest(req newsRequest) service.NewsInput {
	return service.NewsInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	}
}

func userToResponse(user *domain.User, token string) userResponse {
	return userResponse{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Token:    token,
	}
}

func newsToResponse(news domain.News) newsResponse {
	return newsResponse{
		ID:            news.ID,
		Title:         news.Title,
		Description:   news.Description,
		Image:         news.Image,
		CategoryID:    news.CategoryID,
		UserID:        news.UserID,
		CreatedAt:     news.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     news.UpdatedAt.Format(time.RFC3339),
		CategoryTitle: news.CategoryTitle,
		Author:        news.Author,
	}
}

func newsListToResponse(items []domain.News) []newsResponse {
	resp := make([]newsResponse, len(items))
	for i := range items {
		resp[i] = newsToResponse(items[i])
	}
	return resp
}
