package cooklang

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Quantity 數量值：乾淨的數字，或無法化簡時保留原文的字串。
// JSON 序列化時分別輸出為數字或字串。
type Quantity struct {
	number  float64
	text    string
	numeric bool
}

// NumericQuantity 建立數值型數量
func NumericQuantity(v float64) Quantity {
	return Quantity{number: v, numeric: true}
}

// TextualQuantity 建立字串型數量
func TextualQuantity(s string) Quantity {
	return Quantity{text: s}
}

// IsNumeric 是否為數值型
func (q Quantity) IsNumeric() bool { return q.numeric }

// Number 數值內容（僅在 IsNumeric 時有意義）
func (q Quantity) Number() float64 { return q.number }

// Text 字串內容（僅在非數值型時有意義）
func (q Quantity) Text() string { return q.text }

// String 以人可讀形式輸出，數值不帶多餘小數位
func (q Quantity) String() string {
	if q.numeric {
		return strconv.FormatFloat(q.number, 'f', -1, 64)
	}
	return q.text
}

// MarshalJSON 數值輸出為 JSON number，字串輸出為 JSON string
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.numeric {
		return json.Marshal(q.number)
	}
	return json.Marshal(q.text)
}

// UnmarshalJSON 依 JSON 型別還原數值或字串
func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = TextualQuantity(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*q = NumericQuantity(v)
	return nil
}

// 乾淨數字：純十進位表示，不接受指數、十六進位或 Inf/NaN
var cleanNumberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

func cleanNumber(s string) (float64, bool) {
	if !cleanNumberPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// hasLeadingZero 偵測前導零（"01" 有，"0" 與 "0.5" 沒有）
func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

// ParseQuantity 解析數量字串。回傳值的第二個布林為 false 時表示
// 未解析（輸入為空白），由呼叫端套用預設值。
// 規則：
//   - 含 "/" 且兩側皆為乾淨數字、皆無前導零時，化簡為商（"1/2" → 0.5）
//   - 任一側有前導零則整串原文保留（"01/2" 可能是帶斜線的量測代碼）
//   - 其餘無法化為乾淨數字的輸入原文保留
func ParseQuantity(raw string) (Quantity, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Quantity{}, false
	}

	left, right, hasRight := strings.Cut(trimmed, "/")
	left = strings.TrimSpace(left)

	if !hasRight {
		if v, ok := cleanNumber(left); ok {
			return NumericQuantity(v), true
		}
		return TextualQuantity(trimmed), true
	}

	right = strings.TrimSpace(right)
	lv, lok := cleanNumber(left)
	rv, rok := cleanNumber(right)
	if !lok || !rok {
		return TextualQuantity(trimmed), true
	}
	if hasLeadingZero(left) || hasLeadingZero(right) {
		return TextualQuantity(trimmed), true
	}
	// 分母為零無法化簡，原文保留
	if rv == 0 {
		return TextualQuantity(trimmed), true
	}
	return NumericQuantity(lv / rv), true
}

// ParseUnits 解析單位字串。空白輸入回傳 false，由呼叫端套用預設值。
func ParseUnits(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// CoerceQuantity 把設定值轉為 Quantity，套用與內文相同的數量規則
// （含分數化簡），無法解析時視為任意文字（例如 "some"）。
func CoerceQuantity(raw string) Quantity {
	if q, ok := ParseQuantity(raw); ok {
		return q
	}
	return TextualQuantity(strings.TrimSpace(raw))
}
