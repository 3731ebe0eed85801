package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"movie-api/internal/auth"
	"movie-api/internal/cache"
	"movie-api/internal/domain"
	"movie-api/internal/service"
	"movie-api/internal/storage"
)

const posterURLTTL = 15 * time.Minute

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	movies    service.MovieService
	reviews   service.ReviewService
	tokens    *auth.Manager
	cache     *cache.ResponseCache
	storage   storage.Service
	bucket    string
	keyPrefix string
}

// NewHandler builds the API handler. cache and store may be nil when the
// corresponding subsystem is disabled.
func NewHandler(
	users service.UserService,
	movies service.MovieService,
	reviews service.ReviewService,
	tokens *auth.Manager,
	responseCache *cache.ResponseCache,
	store storage.Service,
	bucket, keyPrefix string,
) *Handler {
	return &Handler{
		users:     users,
		movies:    movies,
		reviews:   reviews,
		tokens:    tokens,
		cache:     responseCache,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.POST("/signup", h.signUp)
	router.POST("/signin", h.signIn)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	protected := router.Group("/", h.requireAuth())
	{
		protected.GET("/movies", h.cache.Middleware(), h.listMovies)
		protected.POST("/movies", h.createMovie)
		protected.GET("/movies/:key", h.cache.Middleware(), h.getMovie)
		protected.PUT("/movies/:key", h.updateMovie)
		protected.DELETE("/movies/:key", h.deleteMovie)
		protected.POST("/movies/:key/poster", h.uploadPoster)
		protected.GET("/movies/:key/poster", h.getPoster)
		protected.POST("/reviews", h.createReview)
		protected.GET("/reviews", h.listReviews)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const principalKey = "principal"

// requireAuth short-circuits any request without a verifiable bearer token.
// All failure modes collapse into one 401 response.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := h.tokens.VerifyHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) auth.Principal {
	v, _ := c.Get(principalKey)
	principal, _ := v.(auth.Principal)
	return principal
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ----- auth -----

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Name, req.Username, req.Password); err != nil {
		status := http.StatusInternalServerError
		if domain.IsValidation(err) || errors.Is(err, domain.ErrAlreadyExists) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "user created"})
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": auth.Scheme + " " + token})
}

// ----- movies -----

type actorRequest struct {
	ActorName     string `json:"actorName"`
	CharacterName string `json:"characterName"`
}

type createMovieRequest struct {
	Title       string         `json:"title"`
	ReleaseDate int            `json:"releaseDate"`
	Genre       string         `json:"genre"`
	Actors      []actorRequest `json:"actors"`
}

type updateMovieRequest struct {
	Title       *string        `json:"title"`
	ReleaseDate *int           `json:"releaseDate"`
	Genre       *string        `json:"genre"`
	Actors      []actorRequest `json:"actors"`
}

func (h *Handler) listMovies(c *gin.Context) {
	movies, err := h.movies.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]MovieResponse, len(movies))
	for i := range movies {
		resp[i] = movieToResponse(movies[i], false)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getMovie(c *gin.Context) {
	includeReviews := c.Query("reviews") == "true"

	movie, err := h.movies.Get(c.Request.Context(), c.Param("key"), includeReviews)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, movieToResponse(*movie, includeReviews))
}

func (h *Handler) createMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie, err := h.movies.Create(c.Request.Context(), service.MovieInput{
		Title:       req.Title,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
		Actors:      actorsToInput(req.Actors),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Flush(c.Request.Context())
	c.JSON(http.StatusCreated, movieToResponse(*movie, false))
}

func (h *Handler) updateMovie(c *gin.Context) {
	var req updateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := service.MovieUpdate{
		Title:       req.Title,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
	}
	if req.Actors != nil {
		update.Actors = actorsToInput(req.Actors)
	}

	movie, err := h.movies.Update(c.Request.Context(), c.Param("key"), update)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Flush(c.Request.Context())
	c.JSON(http.StatusOK, movieToResponse(*movie, false))
}

func (h *Handler) deleteMovie(c *gin.Context) {
	movie, err := h.movies.Get(c.Request.Context(), c.Param("key"), false)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.movies.Delete(c.Request.Context(), movie.ID); err != nil {
		h.writeError(c, err)
		return
	}

	// Poster cleanup runs after the row delete; a failure here only
	// orphans the object.
	var warnings []string
	if movie.PosterKey != "" && h.storage != nil && h.bucket != "" {
		if err := h.storage.Delete(c.Request.Context(), h.bucket, movie.PosterKey); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete poster: %v", err))
		}
	}

	h.cache.Flush(c.Request.Context())
	resp := gin.H{"deleted": movie.ID}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) uploadPoster(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	movie, err := h.movies.Get(c.Request.Context(), c.Param("key"), false)
	if err != nil {
		h.writeError(c, err)
		return
	}

	file, err := c.FormFile("poster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poster file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("%s/movie-%d/%s%s", h.keyPrefix, movie.ID, uuid.NewString(), filepath.Ext(file.Filename))
	location, err := h.storage.Upload(c.Request.Context(), h.bucket, key, src, file.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.movies.SetPosterKey(c.Request.Context(), movie.ID, key); err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Flush(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"key": key, "location": location})
}

func (h *Handler) getPoster(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	movie, err := h.movies.Get(c.Request.Context(), c.Param("key"), false)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if movie.PosterKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie has no poster"})
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, movie.PosterKey, posterURLTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ----- reviews -----

type createReviewRequest struct {
	MovieID int64    `json:"movieId"`
	Review  string   `json:"review"`
	Rating  *float64 `json:"rating"`
	// Username is accepted but deliberately ignored; the author is always
	// the authenticated principal.
	Username string `json:"username"`
}

func (h *Handler) createReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), principalFrom(c), service.ReviewInput{
		MovieID: req.MovieID,
		Review:  req.Review,
		Rating:  req.Rating,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.cache.Flush(c.Request.Context())
	c.JSON(http.StatusCreated, reviewToResponse(*review))
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		resp[i] = reviewToResponse(reviews[i])
	}
	c.JSON(http.StatusOK, resp)
}

// ----- responses -----

type ActorResponse struct {
	ActorName     string `json:"actorName"`
	CharacterName string `json:"characterName"`
}

type MovieResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	ReleaseDate int               `json:"releaseDate"`
	Genre       string            `json:"genre"`
	Actors      []ActorResponse   `json:"actors"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	Reviews     *[]ReviewResponse `json:"reviews,omitempty"`
}

type ReviewResponse struct {
	ID        int64   `json:"id"`
	MovieID   int64   `json:"movieId"`
	Username  string  `json:"username"`
	Review    string  `json:"review"`
	Rating    float64 `json:"rating"`
	CreatedAt string  `json:"created_at"`
}

func movieToResponse(movie domain.Movie, includeReviews bool) MovieResponse {
	resp := MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseDate: movie.ReleaseDate,
		Genre:       string(movie.Genre),
		Actors:      make([]ActorResponse, len(movie.Actors)),
		CreatedAt:   movie.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   movie.UpdatedAt.Format(time.RFC3339),
	}
	for i := range movie.Actors {
		resp.Actors[i] = ActorResponse{
			ActorName:     movie.Actors[i].ActorName,
			CharacterName: movie.Actors[i].CharacterName,
		}
	}
	if includeReviews {
		reviews := make([]ReviewResponse, len(movie.Reviews))
		for i := range movie.Reviews {
			reviews[i] = reviewToResponse(movie.Reviews[i])
		}
		resp.Reviews = &reviews
	}
	return resp
}

func reviewToResponse(review domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		MovieID:   review.MovieID,
		Username:  review.Username,
		Review:    review.Review,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt.Format(time.RFC3339),
	}
}

func actorsToInput(actors []actorRequest) []service.ActorInput {
	inputs := make([]service.ActorInput, len(actors))
	for i, actor := range actors {
		inputs[i] = service.ActorInput{
			ActorName:     actor.ActorName,
			CharacterName: actor.CharacterName,
		}
	}
	return inputs
}
