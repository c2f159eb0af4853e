package cooklang

import (
	"fmt"
	"strings"
)

// Parser 食譜標記解析器。只持有唯讀設定，無每次呼叫的可變狀態，
// 可跨連續或併發的 Parse 呼叫重複使用。
type Parser struct {
	opts Options
}

// NewParser 以指定設定建立解析器
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Options 回傳解析器設定
func (p *Parser) Options() Options {
	return p.opts
}

// Parse 解析食譜原文並回傳結構化結果。
// 流程：去除註解 → 抽出購物清單區塊（自原文移除）→ 切行 →
// 逐行由左至右掃描標記 → 彙整。
// 文法本身寬容到不拒絕任何輸入；唯一的錯誤來源是內部分派
// 遇到未定義的語法形式，屬於實作缺陷而非輸入問題。
func (p *Parser) Parse(source string) (*Recipe, error) {
	recipe := &Recipe{
		Ingredients:  []*Ingredient{},
		Cookwares:    []*Cookware{},
		Metadata:     map[string]string{},
		Steps:        []Step{},
		ShoppingList: map[string][]Item{},
	}

	text := stripComments(source)

	text, shoppingList, err := extractShoppingLists(text)
	if err != nil {
		return nil, err
	}
	recipe.ShoppingList = shoppingList

	for _, line := range splitLines(text) {
		step, err := p.scanLine(line, recipe, len(recipe.Steps))
		if err != nil {
			return nil, err
		}
		// 空步驟不保留，步驟編號只隨著非空步驟前進
		if len(step) == 0 {
			continue
		}
		recipe.Steps = append(recipe.Steps, step)
	}

	return recipe, nil
}

// stripComments 移除區塊註解與行註解。區塊註解連同前後空白
// 以單一空格取代，避免相鄰標記黏在一起。
func stripComments(text string) string {
	text = blockCommentPattern.ReplaceAllString(text, " ")
	text = lineCommentPattern.ReplaceAllString(text, "")
	return text
}

// extractShoppingLists 反覆從工作文字開頭掃描購物清單區塊：
// 記錄分類與項目後把整段原文切除，讓它不會再進入步驟斷詞。
// 同名分類以後出現者覆蓋（取代而非合併）。
func extractShoppingLists(text string) (string, map[string][]Item, error) {
	lists := map[string][]Item{}

	for {
		loc := shoppingListPattern.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}

		m := match{re: shoppingListPattern, src: text, loc: loc}
		category, _ := m.group("category")
		rawItems, _ := m.group("items")
		lists[strings.TrimSpace(category)] = parseItems(rawItems)

		// 切除匹配範圍，保留一個換行維持前後行的分隔。
		// 切除必須實際生效，否則下一輪會重複匹配同一區塊。
		next := text[:loc[0]] + "\n" + text[loc[1]:]
		if len(next) >= len(text) {
			return "", nil, fmt.Errorf("cooklang: 購物清單區塊切除未生效（位置 %d..%d）", loc[0], loc[1])
		}
		text = next
	}

	return text, lists, nil
}

// parseItems 解析購物清單項目行：name 或 name|synonym，皆修剪空白
func parseItems(block string) []Item {
	items := []Item{}
	for _, line := range splitLines(block) {
		name, synonym, _ := strings.Cut(line, "|")
		items = append(items, Item{
			Name:    strings.TrimSpace(name),
			Synonym: strings.TrimSpace(synonym),
		})
	}
	return items
}

// splitLines 依換行切割（支援 \n 與 \r\n），丟棄修剪後為空的行
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// scanLine 對單一行做由左至右的標記掃描。詮釋資料行整行被消耗，
// 不產生步驟；其餘行上相鄰匹配之間的原文以 Text 項目保留。
func (p *Parser) scanLine(line string, recipe *Recipe, stepIndex int) (Step, error) {
	if m := metadataPattern.FindStringSubmatch(line); m != nil {
		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		// 重複鍵以後寫入者為準
		recipe.Metadata[key] = value
		return nil, nil
	}

	var step Step
	pos := 0
	for pos < len(line) {
		form, loc := nextToken(line[pos:])
		if loc == nil {
			break
		}

		if loc[0] > 0 {
			step = append(step, Text{Value: line[pos : pos+loc[0]]})
		}

		item, err := p.buildItem(form, line[pos:], loc, stepIndex)
		if err != nil {
			return nil, err
		}
		switch v := item.(type) {
		case *Ingredient:
			recipe.Ingredients = append(recipe.Ingredients, v)
		case *Cookware:
			recipe.Cookwares = append(recipe.Cookwares, v)
		}
		step = append(step, item)

		pos += loc[1]
	}

	if pos < len(line) {
		step = append(step, Text{Value: line[pos:]})
	}

	return step, nil
}

// buildItem 依語法形式建構步驟項目並套用預設值策略
func (p *Parser) buildItem(form tokenForm, src string, loc []int, stepIndex int) (StepItem, error) {
	switch form {
	case formIngredientMulti:
		m := match{re: ingredientMultiPattern, src: src, loc: loc}
		name, _ := m.group("name")
		ing := &Ingredient{
			Name:     strings.TrimSpace(name),
			Quantity: p.opts.DefaultIngredientQuantity,
			Step:     p.stepRef(stepIndex),
		}
		if raw, ok := m.group("quantity"); ok {
			if q, ok := ParseQuantity(raw); ok {
				ing.Quantity = q
			}
		}
		if raw, ok := m.group("units"); ok {
			if u, ok := ParseUnits(raw); ok {
				ing.Units = u
			}
		}
		if raw, ok := m.group("preparation"); ok {
			prep := strings.TrimSpace(raw)
			ing.Preparation = &prep
		}
		return ing, nil

	case formIngredientSingle:
		m := match{re: ingredientSinglePattern, src: src, loc: loc}
		name, _ := m.group("name")
		return &Ingredient{
			Name:     strings.TrimSpace(name),
			Quantity: p.opts.DefaultIngredientQuantity,
			Step:     p.stepRef(stepIndex),
		}, nil

	case formCookwareMulti:
		m := match{re: cookwareMultiPattern, src: src, loc: loc}
		name, _ := m.group("name")
		cw := &Cookware{
			Name:     strings.TrimSpace(name),
			Quantity: p.opts.DefaultCookwareQuantity,
			Step:     p.stepRef(stepIndex),
		}
		if raw, ok := m.group("quantity"); ok {
			if q, ok := ParseQuantity(raw); ok {
				cw.Quantity = q
			}
		}
		return cw, nil

	case formCookwareSingle:
		m := match{re: cookwareSinglePattern, src: src, loc: loc}
		name, _ := m.group("name")
		return &Cookware{
			Name:     strings.TrimSpace(name),
			Quantity: p.opts.DefaultCookwareQuantity,
			Step:     p.stepRef(stepIndex),
		}, nil

	case formTimer:
		m := match{re: timerPattern, src: src, loc: loc}
		name, _ := m.group("name")
		// 計時器的回退值是 0，不使用呼叫端設定的預設
		timer := &Timer{
			Name:     strings.TrimSpace(name),
			Quantity: NumericQuantity(0),
		}
		if raw, ok := m.group("quantity"); ok {
			if q, ok := ParseQuantity(raw); ok {
				timer.Quantity = q
			}
		}
		if raw, ok := m.group("units"); ok {
			if u, ok := ParseUnits(raw); ok {
				timer.Units = u
			}
		}
		return timer, nil

	default:
		return nil, fmt.Errorf("cooklang: 未定義的語法形式 %d", form)
	}
}

// stepRef 啟用步驟編號時回傳目前步驟索引的複本
func (p *Parser) stepRef(index int) *int {
	if !p.opts.IncludeStepNumber {
		return nil
	}
	n := index
	return &n
}
