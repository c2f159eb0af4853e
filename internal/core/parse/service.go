// Package parse 封裝食譜標記解析的業務層：套用設定預設值與請求覆寫、
// 快取解析結果，並提供批次解析佇列。
package parse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"recipe-parser/internal/core/cache"
	"recipe-parser/internal/core/cooklang"
	"recipe-parser/internal/infrastructure/config"
	"recipe-parser/internal/pkg/common"

	"go.uber.org/zap"
)

// Overrides 單次請求對解析選項的覆寫，nil 表示沿用設定值
type Overrides struct {
	DefaultIngredientAmount *string `json:"default_ingredient_amount,omitempty"`
	DefaultCookwareAmount   *string `json:"default_cookware_amount,omitempty"`
	IncludeStepNumber       *bool   `json:"include_step_number,omitempty"`
}

// Service 解析服務
type Service struct {
	config *config.Config
	cache  *cache.Manager
}

// NewService 創建解析服務
func NewService(cfg *config.Config, cacheManager *cache.Manager) *Service {
	return &Service{
		config: cfg,
		cache:  cacheManager,
	}
}

// OptionsFromConfig 由設定值建立解析選項
func OptionsFromConfig(cfg *config.Config) cooklang.Options {
	return cooklang.Options{
		DefaultIngredientQuantity: cooklang.CoerceQuantity(cfg.Parser.DefaultIngredientAmount),
		DefaultCookwareQuantity:   cooklang.CoerceQuantity(cfg.Parser.DefaultCookwareAmount),
		IncludeStepNumber:         cfg.Parser.IncludeStepNumber,
	}
}

// options 套用請求覆寫後的解析選項
func (s *Service) options(ov *Overrides) cooklang.Options {
	opts := OptionsFromConfig(s.config)
	if ov == nil {
		return opts
	}
	if ov.DefaultIngredientAmount != nil {
		opts.DefaultIngredientQuantity = cooklang.CoerceQuantity(*ov.DefaultIngredientAmount)
	}
	if ov.DefaultCookwareAmount != nil {
		opts.DefaultCookwareQuantity = cooklang.CoerceQuantity(*ov.DefaultCookwareAmount)
	}
	if ov.IncludeStepNumber != nil {
		opts.IncludeStepNumber = *ov.IncludeStepNumber
	}
	return opts
}

// fingerprint 選項指紋，作為快取鍵的一部分
func fingerprint(opts cooklang.Options) string {
	return fmt.Sprintf("%s|%s|%t",
		opts.DefaultIngredientQuantity.String(),
		opts.DefaultCookwareQuantity.String(),
		opts.IncludeStepNumber,
	)
}

// ParseText 解析食譜原文。requestID 只用於日誌。
func (s *Service) ParseText(ctx context.Context, source string, ov *Overrides, requestID string) (*cooklang.Recipe, error) {
	if source == "" {
		return nil, common.ErrEmptySource
	}
	if s.config.Parser.MaxSourceBytes > 0 && int64(len(source)) > s.config.Parser.MaxSourceBytes {
		return nil, common.ErrSourceTooLarge
	}

	opts := s.options(ov)

	var key string
	if s.cache != nil {
		key = s.cache.Key(source, fingerprint(opts))
		if cached, err := s.cache.Get(ctx, key); err == nil {
			recipe := &cooklang.Recipe{}
			if err := common.ParseJSON(cached, recipe); err == nil {
				return recipe, nil
			}
			// 快取內容損壞，重新解析
			common.LogWarn("快取內容反序列化失敗", zap.String("request_id", requestID))
		}
	}

	start := time.Now()
	recipe, err := cooklang.NewParser(opts).Parse(source)
	if err != nil {
		common.LogError("解析失敗",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, common.NewError(common.ErrCodeInternalError, "食譜解析失敗", http.StatusInternalServerError, err)
	}

	common.LogParse(len(recipe.Steps), len(recipe.Ingredients), len(recipe.Cookwares), time.Since(start), requestID)

	if s.cache != nil {
		if encoded, err := common.ToJSON(recipe); err == nil {
			if err := s.cache.Set(ctx, key, encoded); err != nil {
				common.LogWarn("快取寫入失敗", zap.Error(err))
			}
		}
	}

	return recipe, nil
}

// CacheStats 快取統計，快取停用時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.GetStats()
}
