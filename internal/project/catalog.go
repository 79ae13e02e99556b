package project

// Category describes one entry of the expense category catalog. The id is
// the stable identifier used on claims; the name and icon are display-only.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories is the catalog of claimable expense categories.
var Categories = []Category{
	{ID: "office", Name: "Office Supplies", Icon: "✏️"},
	{ID: "travel", Name: "Domestic Travel", Icon: "🚄"},
	{ID: "equipment", Name: "Equipment", Icon: "💻"},
	{ID: "meal", Name: "Meals & Incidentals", Icon: "🍱"},
	{ID: "consumable", Name: "Lab Consumables", Icon: "🧪"},
	{ID: "maintenance", Name: "Maintenance", Icon: "🔧"},
}

// CategoryName resolves a catalog id to its display name. Unknown ids fall
// back to the id itself so rendering never breaks on stale data.
func CategoryName(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

// CategoryIDs returns all catalog ids in catalog order.
func CategoryIDs() []string {
	ids := make([]string, len(Categories))
	for i, c := range Categories {
		ids[i] = c.ID
	}
	return ids
}
