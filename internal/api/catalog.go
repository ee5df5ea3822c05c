package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/models"
)

const (
	defaultQuestionLimit = 3
	maxQuestionLimit     = 10
)

var (
	errContactFields = errors.New("email and message are required")
	errDocumentID    = errors.New("id must be a valid uuid")
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type documentRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tags     string `json:"tags"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) handleRandomQuestions(c *gin.Context) {
	limit := defaultQuestionLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = min(max(n, 1), maxQuestionLimit)
		}
	}

	questions, err := h.catalog.RandomQuestions(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("fetch random questions failed", "error", err)
		writeError(c, http.StatusInternalServerError, "Server error", nil)
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	c.JSON(http.StatusOK, questions)
}

func (h *Handler) handleContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "invalid payload", errContactFields)
		return
	}

	stored, err := h.catalog.CreateContact(c.Request.Context(), models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Errorw("store contact message failed", "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while processing your request.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message received successfully!", "data": stored})
}

func (h *Handler) handleListDocuments(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), false)
	if err != nil {
		h.logger.Errorw("list documents failed", "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while fetching documents.", nil)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) handleAddDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		h.logger.Errorw("add document failed", "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while adding the document.", nil)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) handleDeleteDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", errDocumentID)
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), req.ID); err != nil {
		h.logger.Errorw("delete document failed", "id", req.ID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while deleting the document.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) handleUpdateDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if _, err := uuid.Parse(req.ID); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", errDocumentID)
		return
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), req.ID, req.input()); err != nil {
		h.logger.Errorw("update document failed", "id", req.ID, "error", err)
		writeError(c, http.StatusInternalServerError, "An error occurred while updating the document.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r documentRequest) input() db.ProductInput {
	return db.ProductInput{
		Title:    strings.TrimSpace(r.Title),
		Tags:     r.Tags,
		Link:     strings.TrimSpace(r.Link),
		ImageURL: strings.TrimSpace(r.ImageURL),
	}
}

func (h *Handler) handleProducts(c *gin.Context) {
	sortOption := c.DefaultQuery("sort", models.SortDefault)
	byVideo := sortOption == models.SortVideo

	rows, err := h.catalog.ListProducts(c.Request.Context(), byVideo)
	if err != nil {
		h.logger.Errorw("fetch products failed", "sort", sortOption, "error", err)
		writeError(c, http.StatusInternalServerError, "Server error", err)
		return
	}

	products := models.FilterProducts(models.NewShopProducts(rows), c.Query("search"))

	if byVideo {
		c.JSON(http.StatusOK, gin.H{"groupedProducts": models.GroupByVideo(products), "sortOption": sortOption})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "sortOption": sortOption})
}

func (h *Handler) handleMigratedData(c *gin.Context) {
	rows, err := h.catalog.MigratedData(c.Request.Context())
	if err != nil {
		h.logger.Errorw("fetch migrated data failed", "error", err)
		writeError(c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	c.JSON(http.StatusOK, rows)
}
