package salesreport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category groups the food entries of one menu category in server order.
type Category struct {
	Name  string      `json:"name"`
	Foods []FoodEntry `json:"foods"`
}

// CategorizedPivot maps category names to food entries while keeping the
// category order of the upstream response. Entries are indexed by category
// and then by food name so channel lookups stay explicit.
type CategorizedPivot struct {
	categories []Category
	index      map[string]int
	foods      map[string]map[string]int
}

// NewPivot builds a pivot from categories in the given order. A repeated
// category name replaces the earlier foods but keeps the earlier position.
func NewPivot(categories ...Category) CategorizedPivot {
	var p CategorizedPivot
	for _, c := range categories {
		p.set(c.Name, c.Foods)
	}
	return p
}

// Set assigns the foods of a category, appending the category when new.
// Copies of a pivot share storage, so Set detaches p from them before
// writing.
func (p *CategorizedPivot) Set(name string, foods []FoodEntry) {
	p.detach()
	p.set(name, foods)
}

func (p *CategorizedPivot) detach() {
	if p.index == nil {
		return
	}
	categories := make([]Category, len(p.categories), len(p.categories)+1)
	copy(categories, p.categories)
	index := make(map[string]int, len(p.index)+1)
	for k, v := range p.index {
		index[k] = v
	}
	foods := make(map[string]map[string]int, len(p.foods)+1)
	for k, v := range p.foods {
		foods[k] = v
	}
	p.categories, p.index, p.foods = categories, index, foods
}

// set writes in place and is only used on pivots under construction.
func (p *CategorizedPivot) set(name string, foods []FoodEntry) {
	if foods == nil {
		foods = []FoodEntry{}
	}
	if p.index == nil {
		p.index = make(map[string]int)
		p.foods = make(map[string]map[string]int)
	}
	byName := make(map[string]int, len(foods))
	for i, f := range foods {
		if _, dup := byName[f.FoodName]; !dup {
			byName[f.FoodName] = i
		}
	}
	if i, ok := p.index[name]; ok {
		p.categories[i].Foods = foods
	} else {
		p.index[name] = len(p.categories)
		p.categories = append(p.categories, Category{Name: name, Foods: foods})
	}
	p.foods[name] = byName
}

// Len returns the number of categories.
func (p CategorizedPivot) Len() int {
	return len(p.categories)
}

// Categories returns a copy of the categories in order. The Foods slices are
// shared with the pivot and must not be modified.
func (p CategorizedPivot) Categories() []Category {
	if p.categories == nil {
		return nil
	}
	out := make([]Category, len(p.categories))
	copy(out, p.categories)
	return out
}

// Names returns the category names in order.
func (p CategorizedPivot) Names() []string {
	out := make([]string, len(p.categories))
	for i, c := range p.categories {
		out[i] = c.Name
	}
	return out
}

// Category returns the foods of a category.
func (p CategorizedPivot) Category(name string) ([]FoodEntry, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.categories[i].Foods, true
}

// Food looks up a food entry by category and name.
func (p CategorizedPivot) Food(category, name string) (FoodEntry, bool) {
	ci, ok := p.index[category]
	if !ok {
		return FoodEntry{}, false
	}
	fi, ok := p.foods[category][name]
	if !ok {
		return FoodEntry{}, false
	}
	return p.categories[ci].Foods[fi], true
}

// ChannelRevenue returns the revenue of a food through a channel, or zero
// when the category, food or channel is absent.
func (p CategorizedPivot) ChannelRevenue(category, food, channel string) float64 {
	entry, ok := p.Food(category, food)
	if !ok {
		return 0
	}
	return entry.ChannelRevenue(channel)
}

// Map mirrors the category order into a new pivot built from fn's output.
func (p CategorizedPivot) Map(fn func(Category) []FoodEntry) CategorizedPivot {
	var out CategorizedPivot
	for _, c := range p.categories {
		out.set(c.Name, fn(c))
	}
	return out
}

// UnmarshalJSON decodes a JSON object keeping the key order.
func (p *CategorizedPivot) UnmarshalJSON(data []byte) error {
	*p = CategorizedPivot{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("salesreport: pivot must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("salesreport: unexpected pivot key %v", keyTok)
		}
		var foods []FoodEntry
		if err := dec.Decode(&foods); err != nil {
			return fmt.Errorf("salesreport: decode category %q: %w", name, err)
		}
		p.set(name, foods)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the pivot as a JSON object in category order.
func (p CategorizedPivot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range p.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		foods, err := json.Marshal(c.Foods)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(foods)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
