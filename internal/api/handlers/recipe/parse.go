package recipe

import (
	"errors"
	"net/http"

	"recipe-parser/internal/core/cooklang"
	"recipe-parser/internal/core/parse"
	"recipe-parser/internal/core/source"
	"recipe-parser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseRequest 解析食譜原文
type ParseRequest struct {
	Source  string           `json:"source" binding:"required"` // 食譜標記原文
	Options *parse.Overrides `json:"options,omitempty"`         // 單次請求的選項覆寫
}

// ParseURLRequest 由網址下載並解析食譜
type ParseURLRequest struct {
	URL     string           `json:"url" binding:"required"`
	Options *parse.Overrides `json:"options,omitempty"`
}

// ParseBatchRequest 批次解析多份食譜原文
type ParseBatchRequest struct {
	Sources []string         `json:"sources" binding:"required,min=1"`
	Options *parse.Overrides `json:"options,omitempty"`
}

// BatchResult 批次解析中單份原文的結果
type BatchResult struct {
	Index  int               `json:"index"`
	Recipe *cooklang.Recipe  `json:"recipe,omitempty"`
	Error  *common.ErrorInfo `json:"error,omitempty"`
}

// Handler 解析處理程序
type Handler struct {
	parseService *parse.Service
	queue        *parse.Queue
	fetcher      *source.Fetcher
}

// NewHandler 創建新的解析處理程序
func NewHandler(parseService *parse.Service, queue *parse.Queue, fetcher *source.Fetcher) *Handler {
	return &Handler{
		parseService: parseService,
		queue:        queue,
		fetcher:      fetcher,
	}
}

// ensureRequestID 取得或生成請求 ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondError 將錯誤映射為 HTTP 回應
func respondError(c *gin.Context, requestID string, err error) {
	var customErr *common.CustomError
	if errors.As(err, &customErr) {
		c.JSON(customErr.Status, gin.H{
			"error": customErr.Message,
			"code":  customErr.Code,
		})
		return
	}

	common.LogError("未分類的處理錯誤",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  common.ErrCodeInternalError,
	})
}

// HandleParse 解析食譜原文
func (h *Handler) HandleParse(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	recipe, err := h.parseService.ParseText(c.Request.Context(), req.Source, req.Options, requestID)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// HandleParseURL 下載網址內容後解析
func (h *Handler) HandleParseURL(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ParseURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	common.LogInfo("開始下載食譜來源",
		zap.String("request_id", requestID),
		zap.String("url", req.URL),
	)

	src, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	recipe, err := h.parseService.ParseText(c.Request.Context(), src, req.Options, requestID)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// HandleParseBatch 批次解析，透過佇列分派給 worker
func (h *Handler) HandleParseBatch(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ParseBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()
	channels := make([]chan parse.Result, len(req.Sources))
	for i, src := range req.Sources {
		ch, err := h.queue.Enqueue(ctx, src, req.Options)
		if err != nil {
			respondError(c, requestID, err)
			return
		}
		channels[i] = ch
	}

	results := make([]BatchResult, len(channels))
	for i, ch := range channels {
		res := <-ch
		results[i] = BatchResult{Index: i, Recipe: res.Recipe}
		if res.Error != nil {
			results[i].Error = common.NewErrorInfo(res.Error)
		}
	}

	common.LogInfo("批次解析完成",
		zap.String("request_id", requestID),
		zap.Int("count", len(results)),
	)

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// HandleShoppingList 解析後只回傳購物清單分類
func (h *Handler) HandleShoppingList(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	recipe, err := h.parseService.ParseText(c.Request.Context(), req.Source, req.Options, requestID)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shopping_list": recipe.ShoppingList})
}
