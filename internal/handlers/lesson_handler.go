package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/edusphere/ai-service/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LessonGeneratorService is the interface that wraps lesson generation
type LessonGeneratorService interface {
	// GenerateLesson plans a lesson from a free-text request, generates all
	// section contents, and persists the result
	//
	// "ctx" is the context for the request.
	// "req" is the generation request.
	//
	// Returns the completed lesson, its sections, and an error if any.
	GenerateLesson(ctx context.Context, req *models.GenerateLessonRequest) (*models.Lesson, []models.LessonContent, error)
}

// InteractionService is the interface that wraps tutoring interactions
type InteractionService interface {
	// HandleInteraction answers one learner message and advances progress
	//
	// "ctx" is the context for the request.
	// "req" is the interaction request.
	//
	// Always returns interaction data; the error indicates the reply is the
	// fallback apology rather than a real answer.
	HandleInteraction(ctx context.Context, req *models.InteractRequest) (*models.InteractionData, error)
}

// LessonQueryService is the interface that wraps lesson reads and the
// language update
type LessonQueryService interface {
	// ListByUser retrieves all lessons belonging to a user
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns the lessons and an error if any.
	ListByUser(ctx context.Context, userID string) ([]models.Lesson, error)
	// GetDetail retrieves a lesson with its ordered content sections
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the lesson detail and an error if any.
	GetDetail(ctx context.Context, lessonID string) (*models.LessonDetailResponse, error)
	// GetChatHistory retrieves a conversation in chronological order
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "contentID" is the ID of the content section.
	//
	// Returns the chat turns and an error if any.
	GetChatHistory(ctx context.Context, userID, contentID string) ([]models.ChatTurn, error)
	// UpdateLanguage changes the language a lesson is tutored in
	//
	// "ctx" is the context for the request.
	// "lessonID" is the ID of the lesson.
	// "userID" is the ID of the owning user.
	// "languageCode" is the new language code.
	//
	// Returns an error if any.
	UpdateLanguage(ctx context.Context, lessonID, userID, languageCode string) error
}

// LessonHandler handles lesson generation and tutoring HTTP requests
type LessonHandler struct {
	BaseHandler
	generator   LessonGeneratorService
	interaction InteractionService
	query       LessonQueryService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(
	generator LessonGeneratorService,
	interaction InteractionService,
	query LessonQueryService,
	logger *zap.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler: BaseHandler{Logger: logger},
		generator:   generator,
		interaction: interaction,
		query:       query,
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Route("/lessons", func(r chi.Router) {
		r.Post("/", h.GenerateLesson)
		r.Get("/", h.ListLessons)
		r.Post("/interact", h.Interact)
		r.Get("/{id}", h.GetLesson)
		r.Put("/{id}/language", h.UpdateLanguage)
		r.Get("/content/{contentId}/chat", h.GetChatHistory)
	})
}

// GenerateLesson handles POST /api/v1/lessons
// @Summary Generate a lesson
// @Description Generate a complete lesson with content sections from a free-text learning request
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body models.GenerateLessonRequest true "Generation request"
// @Success 200 {object} Response "Lesson generated"
// @Failure 400 {object} Response "Missing required fields"
// @Failure 500 {object} Response "Generation failed"
// @Router /api/v1/lessons [post]
func (h *LessonHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.UserRequest) == "" || req.UserID == "" {
		h.RespondError(w, http.StatusBadRequest, "Missing required fields: userRequest or userId")
		return
	}

	lesson, _, err := h.generator.GenerateLesson(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to generate lesson", zap.String("user_id", req.UserID), zap.Error(err))
		message := err.Error()
		if message == "" {
			message = "Error generating lesson content"
		}
		h.RespondError(w, http.StatusInternalServerError, message)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Lesson generated and stored successfully", map[string]any{
		"lesson": map[string]string{
			"id": lesson.ID,
		},
	})
}

// Interact handles POST /api/v1/lessons/interact
// @Summary Tutoring interaction
// @Description Answer one learner message against the current content section and advance progress
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body models.InteractRequest true "Interaction request"
// @Success 200 {object} Response "Interaction result, possibly a fallback reply"
// @Failure 400 {object} Response "Missing required fields"
// @Router /api/v1/lessons/interact [post]
func (h *LessonHandler) Interact(w http.ResponseWriter, r *http.Request) {
	var req models.InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" || req.UserChat == "" || req.ContentID == "" {
		h.RespondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	data, err := h.interaction.HandleInteraction(r.Context(), &req)
	if err != nil {
		// The learner still gets the fallback reply with a 200; the
		// envelope carries the failure
		h.RespondJSON(w, http.StatusOK, Response{
			Success: false,
			Message: "Failed to process AI interaction",
			Data:    data,
		})
		return
	}

	h.RespondSuccess(w, http.StatusOK, "AI interaction processed successfully", data)
}

// ListLessons handles GET /api/v1/lessons
// @Summary List lessons
// @Description List all lessons belonging to a user, newest first
// @Tags lessons
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} Response "List of lessons"
// @Failure 400 {object} Response "Missing userId"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/v1/lessons [get]
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	lessons, err := h.query.ListByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list lessons", zap.String("user_id", userID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to retrieve lessons")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Lessons retrieved successfully", lessons)
}

// GetLesson handles GET /api/v1/lessons/{id}
// @Summary Get lesson detail
// @Description Get a lesson together with its ordered content sections
// @Tags lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} Response "Lesson detail"
// @Failure 404 {object} Response "Lesson not found"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/v1/lessons/{id} [get]
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")

	detail, err := h.query.GetDetail(r.Context(), lessonID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.RespondError(w, http.StatusNotFound, "lesson not found")
			return
		}
		h.Logger.Error("failed to get lesson detail", zap.String("lesson_id", lessonID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to retrieve lesson")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Lesson retrieved successfully", detail)
}

// UpdateLanguage handles PUT /api/v1/lessons/{id}/language
// @Summary Update lesson language
// @Description Change the language a lesson is tutored in
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param userId query string true "User ID"
// @Param request body models.UpdateLanguageRequest true "New language code"
// @Success 200 {object} Response "Language updated"
// @Failure 400 {object} Response "Missing or invalid fields"
// @Failure 404 {object} Response "Lesson not found"
// @Router /api/v1/lessons/{id}/language [put]
func (h *LessonHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	lessonID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	var req models.UpdateLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("failed to decode request body", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.query.UpdateLanguage(r.Context(), lessonID, userID, req.LanguageCode); err != nil {
		errMsg := err.Error()
		switch {
		case errMsg == "language code is required":
			h.RespondError(w, http.StatusBadRequest, errMsg)
		case strings.Contains(errMsg, "not found"):
			h.RespondError(w, http.StatusNotFound, "lesson not found")
		default:
			h.Logger.Error("failed to update lesson language", zap.String("lesson_id", lessonID), zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, "failed to update language")
		}
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Lesson language updated successfully", nil)
}

// GetChatHistory handles GET /api/v1/lessons/content/{contentId}/chat
// @Summary Get chat history
// @Description Get a user's tutoring conversation for one content section in chronological order
// @Tags lessons
// @Produce json
// @Param contentId path string true "Content section ID"
// @Param userId query string true "User ID"
// @Success 200 {object} Response "Chat history"
// @Failure 400 {object} Response "Missing userId"
// @Failure 500 {object} Response "Internal server error"
// @Router /api/v1/lessons/content/{contentId}/chat [get]
func (h *LessonHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	turns, err := h.query.GetChatHistory(r.Context(), userID, contentID)
	if err != nil {
		h.Logger.Error("failed to get chat history", zap.String("content_id", contentID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to retrieve chat history")
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Chat history retrieved successfully", turns)
}
