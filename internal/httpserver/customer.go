package httpserver

import (
	"errors"
	"log"
	"net/http"

	"estatecrm/internal/domain"
	customersvc "estatecrm/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type customerHandlers struct {
	svc    *customersvc.Service
	logger *log.Logger
}

type preferencesRequest struct {
	BudgetMin    *int64   `json:"budgetMin"`
	BudgetMax    *int64   `json:"budgetMax"`
	Areas        []string `json:"areas"`
	RoomType     string   `json:"roomType"`
	Requirements []string `json:"requirements"`
}

type upsertRequest struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	PipelineStatus string             `json:"pipelineStatus"`
	Preferences    preferencesRequest `json:"preferences"`
	Notes          string             `json:"notes"`
	Source         string             `json:"source"`
}

type transitionRequest struct {
	Stage string `json:"stage" binding:"required"`
}

func (in upsertRequest) toRecord() domain.CustomerRecord {
	return domain.CustomerRecord{
		ID:             in.ID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		PipelineStatus: domain.Stage(in.PipelineStatus),
		Preferences: domain.Preferences{
			BudgetMin:    in.Preferences.BudgetMin,
			BudgetMax:    in.Preferences.BudgetMax,
			Areas:        in.Preferences.Areas,
			RoomType:     in.Preferences.RoomType,
			Requirements: in.Preferences.Requirements,
		},
		Notes:  in.Notes,
		Source: in.Source,
	}
}

func (h customerHandlers) list(c *gin.Context) {
	records, err := h.svc.List()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": records})
}

func (h customerHandlers) active(c *gin.Context) {
	records, err := h.svc.Active()
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": records})
}

func (h customerHandlers) get(c *gin.Context) {
	record, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h customerHandlers) upsert(c *gin.Context) {
	var in upsertRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	record, err := h.svc.Upsert(c.Request.Context(), in.toRecord())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h customerHandlers) update(c *gin.Context) {
	var in upsertRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in.ID = c.Param("id")
	record, err := h.svc.Upsert(c.Request.Context(), in.toRecord())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h customerHandlers) remove(c *gin.Context) {
	removed, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h customerHandlers) transition(c *gin.Context) {
	var in transitionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stage is required"})
		return
	}
	record, err := h.svc.Transition(c.Request.Context(), c.Param("id"), domain.Stage(in.Stage))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h customerHandlers) archive(c *gin.Context) {
	record, err := h.svc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h customerHandlers) unarchive(c *gin.Context) {
	record, err := h.svc.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// reconcile runs a sync pass. Partial push failures still return 200
// with the per-record result; sync is advisory, never blocking.
func (h customerHandlers) reconcile(c *gin.Context) {
	result, err := h.svc.Reconcile(c.Request.Context())
	if err != nil {
		if errors.Is(err, customersvc.ErrSyncUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Printf("reconcile failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"warning": "sync failed, local data untouched", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h customerHandlers) snapshot(c *gin.Context) {
	key, err := h.svc.Export(c.Request.Context())
	if err != nil {
		if errors.Is(err, customersvc.ErrExportUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Printf("export failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"warning": "export failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

// writeError maps domain errors onto responses: validation and state
// errors get specific 4xx messages, storage problems a non-blocking
// 503 warning so the app stays usable offline.
func (h customerHandlers) writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var stateErr *domain.InvalidStateError
	var storageErr *domain.StorageError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stateErr.Error()})
	case errors.As(err, &storageErr):
		h.logger.Printf("storage error: %v", storageErr)
		c.JSON(http.StatusServiceUnavailable, gin.H{"warning": "local storage unavailable", "error": storageErr.Error()})
	default:
		h.logger.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
