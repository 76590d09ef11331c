package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"habit-tracker/internal/domain"
	"habit-tracker/internal/service"
	"habit-tracker/internal/session"
	"habit-tracker/internal/storage"
)

// goalsPath is where a successful login hands the client over to.
const goalsPath = "/api/goals"

var errNoTokenIssuer = errors.New("session token issuer not configured")

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts service.AccountService
	goals    service.GoalService
	tokens   *session.Tokens
	logger   *logrus.Logger
	authRate RateLimit
}

func NewHandler(accounts service.AccountService, goals service.GoalService, tokens *session.Tokens, logger *logrus.Logger, authRate RateLimit) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		accounts: accounts,
		goals:    goals,
		tokens:   tokens,
		logger:   logger,
		authRate: authRate,
	}
}

// NewEngine builds the gin engine. Only the listed proxies may set the client
// address through forwarding headers; with none, the peer address is used.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	return router, nil
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger), sessionMiddleware(h.tokens))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		auth := api.Group("", rateLimitMiddleware(h.authRate, h.logger))
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)

		user := api.Group("", requireAuth())
		user.GET("/goals", h.listGoals)
		user.POST("/goals", h.createGoal)
		user.GET("/goals/stats", h.goalStats)
		user.POST("/goals/:id/complete", h.completeGoal)
		user.GET("/reports", h.listReports)
		user.POST("/reports", h.exportReport)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createGoalRequest struct {
	Habit       string `json:"habit"`
	GoalMinutes int    `json:"goal_minutes"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Date        string `json:"date"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.accounts.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"username": strings.TrimSpace(req.Username),
		"message":  "account created successfully",
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ok, err := h.accounts.VerifyLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if h.tokens == nil {
		h.writeError(c, errNoTokenIssuer)
		return
	}

	sess := currentSession(c)
	sess.Authenticate(strings.TrimSpace(req.Username))
	username, _ := sess.Username()

	token, expires, err := h.tokens.Issue(username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Username:  username,
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		Next:      goalsPath,
	})
}

func (h *Handler) listGoals(c *gin.Context) {
	username := sessionUser(c)

	var (
		goals []domain.WeeklyGoal
		err   error
	)
	if week := c.Query("week"); week != "" {
		goals, err = h.goals.ListWeek(c.Request.Context(), username, week)
	} else {
		goals, err = h.goals.ListGoals(c.Request.Context(), username)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]GoalResponse, len(goals))
	for i := range goals {
		resp[i] = goalToResponse(goals[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	username := sessionUser(c)
	id, err := h.goals.CreateGoal(c.Request.Context(), service.NewGoal{
		Username:    username,
		Habit:       req.Habit,
		GoalMinutes: req.GoalMinutes,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Date:        req.Date,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"message": "habit goal saved successfully",
	})
}

func (h *Handler) completeGoal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}

	if err := h.goals.MarkCompletedFor(c.Request.Context(), sessionUser(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "completed": true})
}

func (h *Handler) goalStats(c *gin.Context) {
	stats, err := h.goals.Stats(c.Request.Context(), sessionUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsToResponse(stats))
}

func (h *Handler) exportReport(c *gin.Context) {
	location, err := h.goals.ExportReport(c.Request.Context(), sessionUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": location})
}

func (h *Handler) listReports(c *gin.Context) {
	objects, err := h.goals.ListReports(c.Request.Context(), sessionUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ReportObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps service errors to status codes. Unexpected failures are
// logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists, please choose another"})
	case errors.Is(err, service.ErrReportsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"storage": errors.Is(err, service.ErrStorageFault),
		}).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation did not complete"})
	}
}

type LoginResponse struct {
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Next      string `json:"next"`
}

type GoalResponse struct {
	ID            int64  `json:"id"`
	Habit         string `json:"habit"`
	GoalMinutes   int    `json:"goal_minutes"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	WeekStartDate string `json:"week_start_date"`
	DayOfWeek     string `json:"day_of_week"`
	Date          string `json:"date"`
	Status        string `json:"status"`
	Completed     bool   `json:"completed"`
}

type HabitStatsResponse struct {
	Habit        string `json:"habit"`
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
	TotalMinutes int    `json:"total_minutes"`
}

type StatsResponse struct {
	Total          int                  `json:"total"`
	Completed      int                  `json:"completed"`
	NotCompleted   int                  `json:"not_completed"`
	ByStatus       map[string]int       `json:"by_status"`
	CompletionRate float64              `json:"completion_rate"`
	Habits         []HabitStatsResponse `json:"habits"`
	Empty          bool                 `json:"empty"`
	Message        string               `json:"message,omitempty"`
}

type ReportObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func goalToResponse(goal domain.WeeklyGoal) GoalResponse {
	return GoalResponse{
		ID:            goal.ID,
		Habit:         goal.Habit,
		GoalMinutes:   goal.GoalMinutes,
		StartTime:     goal.StartTime,
		EndTime:       goal.EndTime,
		WeekStartDate: goal.WeekStartDate,
		DayOfWeek:     goal.DayOfWeek,
		Date:          goal.Date,
		Status:        string(goal.Status()),
		Completed:     goal.Completed,
	}
}

func statsToResponse(stats domain.GoalStats) StatsResponse {
	resp := StatsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		NotCompleted:   stats.NotCompleted,
		ByStatus:       make(map[string]int, len(stats.ByStatus)),
		CompletionRate: stats.CompletionRate,
		Habits:         make([]HabitStatsResponse, len(stats.Habits)),
		Empty:          stats.Empty,
	}
	if stats.Empty {
		resp.Message = "no data available for analysis"
	}
	for status, n := range stats.ByStatus {
		resp.ByStatus[string(status)] = n
	}
	for i, h := range stats.Habits {
		resp.Habits[i] = HabitStatsResponse{
			Habit:        h.Habit,
			Total:        h.Total,
			Completed:    h.Completed,
			TotalMinutes: h.TotalMinutes,
		}
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) ReportObjectResponse {
	resp := ReportObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
