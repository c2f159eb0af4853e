package cooklang

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalLine(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Fry the @onion{2%cups} in a #pan for ~{5%minutes}.")
	require.NoError(t, err)
	require.Len(t, recipe.Steps, 1)

	step := recipe.Steps[0]
	require.Len(t, step, 7)

	assert.Equal(t, Text{Value: "Fry the "}, step[0])

	ing, ok := step[1].(*Ingredient)
	require.True(t, ok)
	assert.Equal(t, "onion", ing.Name)
	require.True(t, ing.Quantity.IsNumeric())
	assert.InDelta(t, 2.0, ing.Quantity.Number(), 1e-9)
	assert.Equal(t, "cups", ing.Units)
	assert.Nil(t, ing.Preparation)

	assert.Equal(t, Text{Value: " in a "}, step[2])

	cw, ok := step[3].(*Cookware)
	require.True(t, ok)
	assert.Equal(t, "pan", cw.Name)
	require.True(t, cw.Quantity.IsNumeric())
	assert.InDelta(t, 1.0, cw.Quantity.Number(), 1e-9)

	assert.Equal(t, Text{Value: " for "}, step[4])

	timer, ok := step[5].(*Timer)
	require.True(t, ok)
	assert.Equal(t, "", timer.Name)
	require.True(t, timer.Quantity.IsNumeric())
	assert.InDelta(t, 5.0, timer.Quantity.Number(), 1e-9)
	assert.Equal(t, "minutes", timer.Units)

	assert.Equal(t, Text{Value: "."}, step[6])

	// 平面列表與步驟內嵌項目一致
	require.Len(t, recipe.Ingredients, 1)
	assert.Same(t, ing, recipe.Ingredients[0])
	require.Len(t, recipe.Cookwares, 1)
	assert.Same(t, cw, recipe.Cookwares[0])
}

func TestParseMetadata(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse(">> servings: 4")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"servings": "4"}, recipe.Metadata)
	assert.Empty(t, recipe.Steps)
}

func TestParseMetadataValueWithColon(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse(">> source: https://example.com/tacos")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/tacos", recipe.Metadata["source"])
}

func TestParseMetadataDuplicateKeyLastWins(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse(">> servings: 4\n>> servings: 6")
	require.NoError(t, err)
	assert.Equal(t, "6", recipe.Metadata["servings"])
	assert.Empty(t, recipe.Steps)
}

func TestParseCommentLineElided(t *testing.T) {
	p := NewParser(DefaultOptions())

	withComment, err := p.Parse("-- note\n@salt")
	require.NoError(t, err)
	plain, err := p.Parse("@salt")
	require.NoError(t, err)

	assert.Equal(t, plain.Steps, withComment.Steps)
	require.Len(t, withComment.Steps, 1)
	require.Len(t, withComment.Steps[0], 1)
}

func TestParseInlineComment(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt -- to taste")
	require.NoError(t, err)
	require.Len(t, recipe.Steps, 1)

	last := recipe.Steps[0][len(recipe.Steps[0])-1]
	if text, ok := last.(Text); ok {
		assert.NotContains(t, text.Value, "to taste")
	}
}

func TestParseBlockComment(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt [- any brand\nworks fine -] and stir.")
	require.NoError(t, err)
	require.Len(t, recipe.Steps, 1)

	// 區塊註解連同前後空白換成單一空格，相鄰文字不黏在一起
	last, ok := recipe.Steps[0][len(recipe.Steps[0])-1].(Text)
	require.True(t, ok)
	assert.Equal(t, " and stir.", last.Value)
	assert.NotContains(t, last.Value, "brand")
}

func TestParseShoppingList(t *testing.T) {
	p := NewParser(DefaultOptions())

	source := "Chop the @garlic.\n\n[produce]\nonion|onions\ngarlic\n\nServe warm."
	recipe, err := p.Parse(source)
	require.NoError(t, err)

	require.Contains(t, recipe.ShoppingList, "produce")
	assert.Equal(t, []Item{
		{Name: "onion", Synonym: "onions"},
		{Name: "garlic", Synonym: ""},
	}, recipe.ShoppingList["produce"])

	// 區塊原文已被切除，不會被斷詞成步驟
	require.Len(t, recipe.Steps, 2)
	for _, step := range recipe.Steps {
		for _, item := range step {
			if text, ok := item.(Text); ok {
				assert.NotContains(t, text.Value, "onions")
				assert.NotContains(t, text.Value, "[produce]")
			}
		}
	}
}

func TestParseShoppingListAtStart(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("[produce]\nonion|onions\ngarlic\n")
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Name: "onion", Synonym: "onions"},
		{Name: "garlic", Synonym: ""},
	}, recipe.ShoppingList["produce"])
	assert.Empty(t, recipe.Steps)
}

func TestParseShoppingListDuplicateCategoryLastWins(t *testing.T) {
	p := NewParser(DefaultOptions())

	source := "[produce]\nonion\n\ntext between\n\n[produce]\ngarlic\n"
	recipe, err := p.Parse(source)
	require.NoError(t, err)

	// 同名分類：後出現的區塊取代前者，不做合併
	assert.Equal(t, []Item{{Name: "garlic", Synonym: ""}}, recipe.ShoppingList["produce"])
	require.Len(t, recipe.Steps, 1)
}

func TestParseShoppingListTrimsNames(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("[ produce ]\n  onion | onions \n")
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "onion", Synonym: "onions"}}, recipe.ShoppingList["produce"])
}

func TestParseDefaults(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt to the #pot")
	require.NoError(t, err)
	require.Len(t, recipe.Ingredients, 1)
	require.Len(t, recipe.Cookwares, 1)

	assert.False(t, recipe.Ingredients[0].Quantity.IsNumeric())
	assert.Equal(t, "some", recipe.Ingredients[0].Quantity.Text())
	assert.Equal(t, "", recipe.Ingredients[0].Units)

	require.True(t, recipe.Cookwares[0].Quantity.IsNumeric())
	assert.InDelta(t, 1.0, recipe.Cookwares[0].Quantity.Number(), 1e-9)
}

func TestParseCustomDefaults(t *testing.T) {
	p := NewParser(Options{
		DefaultIngredientQuantity: NumericQuantity(1),
		DefaultCookwareQuantity:   TextualQuantity("one"),
	})

	recipe, err := p.Parse("Add @salt to the #pot")
	require.NoError(t, err)

	require.True(t, recipe.Ingredients[0].Quantity.IsNumeric())
	assert.InDelta(t, 1.0, recipe.Ingredients[0].Quantity.Number(), 1e-9)
	assert.Equal(t, "one", recipe.Cookwares[0].Quantity.Text())
}

func TestParseMultiwordForms(t *testing.T) {
	p := NewParser(DefaultOptions())

	tests := []struct {
		name        string
		source      string
		wantName    string
		wantText    string
		wantNumber  float64
		numeric     bool
		wantUnits   string
		wantPrep    *string
		hasQuantity bool
	}{
		{
			name:     "名稱含空白但無數量",
			source:   "Add @red onion{} now",
			wantName: "red onion",
			wantText: "some",
		},
		{
			name:       "數量加單位",
			source:     "Add @olive oil{2%tbsp} now",
			wantName:   "olive oil",
			numeric:    true,
			wantNumber: 2,
			wantUnits:  "tbsp",
		},
		{
			name:       "帶備製註記",
			source:     "Add @onion{1}(finely chopped) now",
			wantName:   "onion",
			numeric:    true,
			wantNumber: 1,
			wantPrep:   strPtr("finely chopped"),
		},
		{
			name:       "空括號也算明確備製",
			source:     "Add @onion{1}() now",
			wantName:   "onion",
			numeric:    true,
			wantNumber: 1,
			wantPrep:   strPtr(""),
		},
		{
			name:     "無法解析的數量保留原文",
			source:   "Add @flour{a pinch} now",
			wantName: "flour",
			wantText: "a pinch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := p.Parse(tt.source)
			require.NoError(t, err)
			require.Len(t, recipe.Ingredients, 1)

			ing := recipe.Ingredients[0]
			assert.Equal(t, tt.wantName, ing.Name)
			assert.Equal(t, tt.numeric, ing.Quantity.IsNumeric())
			if tt.numeric {
				assert.InDelta(t, tt.wantNumber, ing.Quantity.Number(), 1e-9)
			} else {
				assert.Equal(t, tt.wantText, ing.Quantity.Text())
			}
			assert.Equal(t, tt.wantUnits, ing.Units)
			assert.Equal(t, tt.wantPrep, ing.Preparation)
		})
	}
}

func TestParseMultiwordCookware(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Use the #cast iron pan{2} here")
	require.NoError(t, err)
	require.Len(t, recipe.Cookwares, 1)
	assert.Equal(t, "cast iron pan", recipe.Cookwares[0].Name)
	require.True(t, recipe.Cookwares[0].Quantity.IsNumeric())
	assert.InDelta(t, 2.0, recipe.Cookwares[0].Quantity.Number(), 1e-9)
}

func TestParseTimer(t *testing.T) {
	p := NewParser(DefaultOptions())

	t.Run("具名計時器", func(t *testing.T) {
		recipe, err := p.Parse("Let it ~rest{10%minutes} before cutting")
		require.NoError(t, err)
		require.Len(t, recipe.Steps, 1)

		var timer *Timer
		for _, item := range recipe.Steps[0] {
			if v, ok := item.(*Timer); ok {
				timer = v
			}
		}
		require.NotNil(t, timer)
		assert.Equal(t, "rest", timer.Name)
		assert.InDelta(t, 10.0, timer.Quantity.Number(), 1e-9)
		assert.Equal(t, "minutes", timer.Units)
	})

	t.Run("數量缺漏回退為零", func(t *testing.T) {
		recipe, err := p.Parse("Wait ~{} a bit")
		require.NoError(t, err)

		var timer *Timer
		for _, item := range recipe.Steps[0] {
			if v, ok := item.(*Timer); ok {
				timer = v
			}
		}
		require.NotNil(t, timer)
		require.True(t, timer.Quantity.IsNumeric())
		assert.InDelta(t, 0.0, timer.Quantity.Number(), 1e-9)
		assert.Equal(t, "", timer.Units)
	})

	t.Run("計時器不進平面列表", func(t *testing.T) {
		recipe, err := p.Parse("Bake for ~{25%minutes}")
		require.NoError(t, err)
		assert.Empty(t, recipe.Ingredients)
		assert.Empty(t, recipe.Cookwares)
	})
}

func TestParseUnmatchedSyntaxAsText(t *testing.T) {
	p := NewParser(DefaultOptions())

	tests := []struct {
		name   string
		source string
	}{
		{"孤立的 at 符號", "email me @ home today"},
		{"孤立的井字號", "item # 5 on the list"},
		{"無大括號的波浪號", "roughly ~ five pieces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := p.Parse(tt.source)
			require.NoError(t, err)
			require.Len(t, recipe.Steps, 1)
			require.Len(t, recipe.Steps[0], 1)
			assert.Equal(t, Text{Value: tt.source}, recipe.Steps[0][0])
			assert.Empty(t, recipe.Ingredients)
			assert.Empty(t, recipe.Cookwares)
		})
	}
}

func TestParseNoDeduplication(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt now\nAdd more @salt later")
	require.NoError(t, err)

	// 同名食材不去重：每次出現都是獨立實體
	require.Len(t, recipe.Ingredients, 2)
	assert.NotSame(t, recipe.Ingredients[0], recipe.Ingredients[1])
	assert.Equal(t, recipe.Ingredients[0].Name, recipe.Ingredients[1].Name)
}

func TestParseStepNumbering(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeStepNumber = true
	p := NewParser(opts)

	source := "Add @salt\n\n>> servings: 2\n\nUse the #pan now"
	recipe, err := p.Parse(source)
	require.NoError(t, err)
	require.Len(t, recipe.Steps, 2)

	// 編號從零起算，只隨非空步驟遞增，詮釋資料行不佔編號
	require.NotNil(t, recipe.Ingredients[0].Step)
	assert.Equal(t, 0, *recipe.Ingredients[0].Step)
	require.NotNil(t, recipe.Cookwares[0].Step)
	assert.Equal(t, 1, *recipe.Cookwares[0].Step)
}

func TestParseStepNumberingDisabled(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt")
	require.NoError(t, err)
	assert.Nil(t, recipe.Ingredients[0].Step)
}

func TestParseBlankLinesProduceNoSteps(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("\n\n   \nAdd @salt\n\n\t\n")
	require.NoError(t, err)
	assert.Len(t, recipe.Steps, 1)
}

func TestParseCRLF(t *testing.T) {
	p := NewParser(DefaultOptions())

	recipe, err := p.Parse("Add @salt\r\nAdd @pepper\r\n")
	require.NoError(t, err)
	assert.Len(t, recipe.Steps, 2)
	assert.Len(t, recipe.Ingredients, 2)
}

func TestFlatListsMatchSteps(t *testing.T) {
	p := NewParser(DefaultOptions())

	source := strings.Join([]string{
		"Dice @onion{1} and @garlic{2%cloves}(minced) finely.",
		"Heat the #pan and add @olive oil{1%tbsp}.",
		"Stir with a #wooden spoon{1} for ~{2%minutes}.",
	}, "\n")

	recipe, err := p.Parse(source)
	require.NoError(t, err)

	var embeddedIngredients []*Ingredient
	var embeddedCookwares []*Cookware
	for _, step := range recipe.Steps {
		for _, item := range step {
			switch v := item.(type) {
			case *Ingredient:
				embeddedIngredients = append(embeddedIngredients, v)
			case *Cookware:
				embeddedCookwares = append(embeddedCookwares, v)
			}
		}
	}

	// 平面列表嚴格等於步驟內嵌項目依序的串接
	require.Equal(t, len(embeddedIngredients), len(recipe.Ingredients))
	for i := range embeddedIngredients {
		assert.Same(t, embeddedIngredients[i], recipe.Ingredients[i])
	}
	require.Equal(t, len(embeddedCookwares), len(recipe.Cookwares))
	for i := range embeddedCookwares {
		assert.Same(t, embeddedCookwares[i], recipe.Cookwares[i])
	}
}

func TestParseRoundTrip(t *testing.T) {
	p := NewParser(DefaultOptions())

	source := strings.Join([]string{
		"Dice @onion{1} and @garlic{2%cloves}(minced) finely.",
		"Heat the #pan and pour @olive oil{1/2%cup}.",
		"Simmer for ~{20%minutes} then add @salt.",
	}, "\n")

	first, err := p.Parse(source)
	require.NoError(t, err)

	// 由步驟項目重建原文再解析，結果應等價
	// （量值經過分數化簡，重建用化簡後的值）
	var lines []string
	for _, step := range first.Steps {
		lines = append(lines, renderStep(step))
	}
	second, err := p.Parse(strings.Join(lines, "\n"))
	require.NoError(t, err)

	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Ingredients, second.Ingredients)
	assert.Equal(t, first.Cookwares, second.Cookwares)
}

// renderStep 把步驟項目還原成標記原文（測試用，一律使用多詞形式）
func renderStep(step Step) string {
	var b strings.Builder
	for _, item := range step {
		switch v := item.(type) {
		case Text:
			b.WriteString(v.Value)
		case *Ingredient:
			fmt.Fprintf(&b, "@%s{%s", v.Name, v.Quantity)
			if v.Units != "" {
				fmt.Fprintf(&b, "%%%s", v.Units)
			}
			b.WriteString("}")
			if v.Preparation != nil {
				fmt.Fprintf(&b, "(%s)", *v.Preparation)
			}
		case *Cookware:
			fmt.Fprintf(&b, "#%s{%s}", v.Name, v.Quantity)
		case *Timer:
			fmt.Fprintf(&b, "~%s{%s", v.Name, v.Quantity)
			if v.Units != "" {
				fmt.Fprintf(&b, "%%%s", v.Units)
			}
			b.WriteString("}")
		}
	}
	return b.String()
}

func strPtr(s string) *string { return &s }
