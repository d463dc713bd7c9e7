package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelinag/medlink/internal/database"
	"github.com/avelinag/medlink/internal/handlers/dto"
	"github.com/avelinag/medlink/internal/models"
	"github.com/avelinag/medlink/internal/service"
)

type RequestHandler struct {
	db           *database.Database
	consultation *service.Consultation
}

func NewRequestHandler(db *database.Database, consultation *service.Consultation) *RequestHandler {
	return &RequestHandler{db: db, consultation: consultation}
}

// CreateRequest создает заявку пациента, статус waiting, доктор не назначен
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.Role.IsDoctor() {
		c.JSON(http.StatusForbidden, gin.H{"error": "doctors cannot create requests"})
		return
	}

	var req dto.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request := &models.Request{
		PatientID:      actor.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Specialization: models.Specialization(req.Specialization),
		Status:         models.StatusWaiting,
		CreatedAt:      time.Now(),
	}

	if err := h.db.CreateRequest(request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	c.JSON(http.StatusCreated, formatRequestResponse(request))
}

// GetRequest возвращает заявку участника; для принятой заявки добавляется id чата
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor := actorFromContext(c)

	request, err := h.db.GetRequest(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get request"})
		}
		return
	}

	if !requestParticipant(request, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	response := formatRequestResponse(request)
	if chat, err := h.db.GetChatByRequest(request.ID.String()); err == nil {
		response["chat_id"] = chat.ID
	}

	c.JSON(http.StatusOK, response)
}

// CloseRequest закрывает заявку. Доступно пациенту-владельцу и назначенному
// доктору из любого статуса, повторное закрытие ничего не меняет.
func (h *RequestHandler) CloseRequest(c *gin.Context) {
	actor := actorFromContext(c)

	request, err := h.db.GetRequest(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get request"})
		}
		return
	}

	if !requestParticipant(request, actor) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	if request.Status != models.StatusClosed {
		if err := h.db.UpdateRequestStatus(request.ID.String(), models.StatusClosed); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to close request"})
			return
		}
		request.Status = models.StatusClosed
	}

	c.JSON(http.StatusOK, formatRequestResponse(request))
}

// requestParticipant проверяет, что actor - пациент заявки или назначенный доктор
func requestParticipant(request *models.Request, actor service.Actor) bool {
	if actor.Role.IsDoctor() {
		return actor.Doctor != nil && request.DoctorID != nil && *request.DoctorID == actor.Doctor.ID
	}
	return request.PatientID == actor.UserID
}

// ListMyRequests возвращает все заявки пациента, новые первыми
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	actor := actorFromContext(c)

	requests, err := h.db.ListPatientRequests(actor.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get requests"})
		return
	}

	result := make([]gin.H, len(requests))
	for i, request := range requests {
		result[i] = formatRequestResponse(&request)
	}

	c.JSON(http.StatusOK, gin.H{"requests": result})
}

// ListDoctorRequests возвращает заявки для доктора:
// filter=available - ожидающие по его специализации, filter=my - принятые им
func (h *RequestHandler) ListDoctorRequests(c *gin.Context) {
	actor := actorFromContext(c)

	var requests []models.Request
	var err error

	if c.Query("filter") == "my" {
		requests, err = h.db.ListDoctorRequests(actor.Doctor.ID.String())
	} else {
		requests, err = h.db.ListAvailableRequests(actor.Doctor.Specialization)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get requests"})
		return
	}

	result := make([]gin.H, len(requests))
	for i, request := range requests {
		result[i] = formatRequestResponse(&request)
	}

	c.JSON(http.StatusOK, gin.H{"requests": result})
}

// AcceptRequest принимает заявку доктором и создает чат
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	actor := actorFromContext(c)
	requestID := c.Param("id")

	chat, err := h.consultation.Accept(requestID, actor.Doctor)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, service.ErrSpecializationMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "request does not match your specialization"})
		case errors.Is(err, database.ErrRequestNotWaiting):
			c.JSON(http.StatusConflict, gin.H{"error": "request is already taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":    chat.ID,
		"request_id": chat.RequestID,
		"created_at": chat.CreatedAt,
	})
}

// formatRequestResponse форматирует ответ для заявки
func formatRequestResponse(request *models.Request) gin.H {
	response := gin.H{
		"id":             request.ID,
		"patient_id":     request.PatientID,
		"title":          request.Title,
		"description":    request.Description,
		"specialization": request.Specialization,
		"status":         request.Status,
		"created_at":     request.CreatedAt,
		"updated_at":     request.UpdatedAt,
	}

	if request.Doctor != nil {
		response["doctor"] = gin.H{
			"id":             request.Doctor.ID,
			"full_name":      request.Doctor.FullName(),
			"specialization": request.Doctor.Specialization,
		}
	}

	return response
}
