// Package cooklang 實作食譜標記語言的核心解析引擎。
// 解析是輸入字串與唯讀選項的純函數：不做任何 I/O，
// 同一個 Parser 實例可以在多個 goroutine 間共用。
package cooklang

import (
	"encoding/json"
	"fmt"
)

// Recipe 解析結果：步驟、食材與器具的平面列表、詮釋資料與購物清單。
// Ingredients 與 Cookwares 依照在步驟中首次出現的順序排列，
// 同名項目不去重（每次出現都是獨立實體）。
type Recipe struct {
	Ingredients  []*Ingredient     `json:"ingredients"`
	Cookwares    []*Cookware       `json:"cookwares"`
	Metadata     map[string]string `json:"metadata"`
	Steps        []Step            `json:"steps"`
	ShoppingList map[string][]Item `json:"shopping_list"`
}

// Step 一行食譜內文斷詞後的項目序列。空步驟不會進入 Recipe.Steps。
type Step []StepItem

// StepItem 步驟中的異質項目：文字、食材、器具或計時器。
type StepItem interface {
	stepItem()
}

// Text 步驟中的純文字片段
type Text struct {
	Value string `json:"value"`
}

// Ingredient 食材。Preparation 只在多詞形式明確給出括號註記時存在；
// Step 只在啟用步驟編號時存在（從零起算）。
type Ingredient struct {
	Name        string   `json:"name"`
	Quantity    Quantity `json:"quantity"`
	Units       string   `json:"units"`
	Preparation *string  `json:"preparation,omitempty"`
	Step        *int     `json:"step,omitempty"`
}

// Cookware 器具。沒有單位與備製欄位。
type Cookware struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Step     *int     `json:"step,omitempty"`
}

// Timer 計時器。只出現在步驟內，不進入任何平面列表。
type Timer struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Units    string   `json:"units"`
}

// Item 購物清單項目
type Item struct {
	Name    string `json:"name"`
	Synonym string `json:"synonym"`
}

func (Text) stepItem()        {}
func (*Ingredient) stepItem() {}
func (*Cookware) stepItem()   {}
func (*Timer) stepItem()      {}

// 步驟項目在 JSON 中帶有 type 標籤，快取往返時據此還原變體。
const (
	itemTypeText       = "text"
	itemTypeIngredient = "ingredient"
	itemTypeCookware   = "cookware"
	itemTypeTimer      = "timer"
)

// MarshalJSON 依序輸出帶 type 標籤的步驟項目
func (s Step) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, len(s))
	for i, it := range s {
		switch v := it.(type) {
		case Text:
			items[i] = struct {
				Type string `json:"type"`
				Text
			}{itemTypeText, v}
		case *Ingredient:
			items[i] = struct {
				Type string `json:"type"`
				*Ingredient
			}{itemTypeIngredient, v}
		case *Cookware:
			items[i] = struct {
				Type string `json:"type"`
				*Cookware
			}{itemTypeCookware, v}
		case *Timer:
			items[i] = struct {
				Type string `json:"type"`
				*Timer
			}{itemTypeTimer, v}
		default:
			return nil, fmt.Errorf("cooklang: 無法序列化的步驟項目 %T", it)
		}
	}
	return json.Marshal(items)
}

// UnmarshalJSON 依 type 標籤還原步驟項目
func (s *Step) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	step := make(Step, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return err
		}

		switch head.Type {
		case itemTypeText:
			var v Text
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			step = append(step, v)
		case itemTypeIngredient:
			v := &Ingredient{}
			if err := json.Unmarshal(raw, v); err != nil {
				return err
			}
			step = append(step, v)
		case itemTypeCookware:
			v := &Cookware{}
			if err := json.Unmarshal(raw, v); err != nil {
				return err
			}
			step = append(step, v)
		case itemTypeTimer:
			v := &Timer{}
			if err := json.Unmarshal(raw, v); err != nil {
				return err
			}
			step = append(step, v)
		default:
			return fmt.Errorf("cooklang: 未知的步驟項目類型 %q", head.Type)
		}
	}

	*s = step
	return nil
}

// Options 解析器設定。建構後唯讀。
type Options struct {
	// DefaultIngredientQuantity 食材缺少或無法解析數量時使用的預設值
	DefaultIngredientQuantity Quantity
	// DefaultCookwareQuantity 器具缺少數量時使用的預設值
	DefaultCookwareQuantity Quantity
	// IncludeStepNumber 是否在食材與器具上附加所屬步驟編號（從零起算）
	IncludeStepNumber bool
}

// DefaultOptions 預設設定：食材數量 "some"、器具數量 1、不附加步驟編號
func DefaultOptions() Options {
	return Options{
		DefaultIngredientQuantity: TextualQuantity("some"),
		DefaultCookwareQuantity:   NumericQuantity(1),
		IncludeStepNumber:         false,
	}
}
