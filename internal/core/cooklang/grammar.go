package cooklang

import "regexp"

// tokenForm 語法形式識別碼。掃描器依此分派對應的欄位萃取邏輯。
type tokenForm int

const (
	formIngredientMulti tokenForm = iota
	formIngredientSingle
	formCookwareMulti
	formCookwareSingle
	formTimer
)

// 各語法形式獨立定義，使用具名群組萃取欄位。
// 多詞形式的名稱排除 @#~{}，確保後續的其他標記不會被吞進名稱裡；
// 單詞形式的名稱在第一個空白或標點處結束。
var (
	// -- 到行尾的註解，整段刪除
	lineCommentPattern = regexp.MustCompile(`--[^\n]*`)
	// [- ... -] 跨行區塊註解，連同前後空白以單一空格取代
	blockCommentPattern = regexp.MustCompile(`\s*\[-(?s:.*?)-\]\s*`)
	// >> key: value 詮釋資料行
	metadataPattern = regexp.MustCompile(`^>>\s*(?P<key>[^:]+):\s*(?P<value>.*)$`)

	ingredientMultiPattern  = regexp.MustCompile(`@(?P<name>[^@#~{}]+?)\{(?P<quantity>[^{}%]*)(?:%(?P<units>[^{}]*))?\}(?:\((?P<preparation>[^()]*)\))?`)
	ingredientSinglePattern = regexp.MustCompile(`@(?P<name>[^\s\p{P}~]+)`)
	cookwareMultiPattern    = regexp.MustCompile(`#(?P<name>[^@#~{}]+?)\{(?P<quantity>[^{}]*)\}`)
	cookwareSinglePattern   = regexp.MustCompile(`#(?P<name>[^\s\p{P}~]+)`)
	timerPattern            = regexp.MustCompile(`~(?P<name>[^@#~{}]*?)\{(?P<quantity>[^{}%]*)(?:%(?P<units>[^{}]*))?\}`)

	// 空行之後的 [分類] 行加上項目行，至下一個空行或文末為止
	shoppingListPattern = regexp.MustCompile(`(?:(?:^|\n)[ \t\r]*\n|^)\[(?P<category>[^\]\r\n]+)\][ \t\r]*\n(?P<items>(?s:.*?))(?:\n[ \t\r]*\n|$)`)
)

// scanOrder 行內掃描的嘗試順序。取最早的匹配；同一起點時
// 先列者優先，多詞形式必須排在對應的單詞形式之前。
var scanOrder = []struct {
	form    tokenForm
	pattern *regexp.Regexp
}{
	{formIngredientMulti, ingredientMultiPattern},
	{formIngredientSingle, ingredientSinglePattern},
	{formCookwareMulti, cookwareMultiPattern},
	{formCookwareSingle, cookwareSinglePattern},
	{formTimer, timerPattern},
}

// match 單一語法形式的匹配結果，具名群組經由索引表解析
type match struct {
	re  *regexp.Regexp
	src string
	loc []int
}

// group 取出具名群組內容，群組未參與匹配時回傳 false
func (m match) group(name string) (string, bool) {
	i := m.re.SubexpIndex(name)
	if i < 0 || 2*i >= len(m.loc) || m.loc[2*i] < 0 {
		return "", false
	}
	return m.src[m.loc[2*i]:m.loc[2*i+1]], true
}

// nextToken 在 s 中尋找最早出現的語法標記
func nextToken(s string) (tokenForm, []int) {
	var bestForm tokenForm
	var best []int
	for _, c := range scanOrder {
		loc := c.pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best[0] {
			bestForm, best = c.form, loc
		}
	}
	return bestForm, best
}
