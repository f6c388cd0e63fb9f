package feed

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run keeps the items whose category tag equals category exactly. An empty
// category returns items unchanged.
func (f *Filterer) Run(items []Item, category string) []Item {
	if category == "" {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}

	return filtered
}
