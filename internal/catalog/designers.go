package catalog

import (
	"strings"

	"github.com/hongminglow/valide/internal/models"
)

// AllDesignerCategories selects every designer category.
const AllDesignerCategories = "All"

// DesignerCategories are the categories offered by the directory filter.
var DesignerCategories = []string{AllDesignerCategories, "Luxury", "Jewelry", "Fashion", "Accessories"}

var designers = []models.Designer{
	{ID: "louis-vuitton", Name: "Louis Vuitton", Category: "Luxury", Image: "/lv-logo.png", Featured: true},
	{ID: "tiffany", Name: "Tiffany & Co.", Category: "Jewelry", Image: "/tiffany-logo.png", Featured: true},
	{ID: "cartier", Name: "Cartier", Category: "Jewelry", Image: "/cartier-logo.png", Featured: true},
	{ID: "prada", Name: "Prada", Category: "Luxury", Image: "/prada-logo.png", Featured: true},
	{ID: "tom-ford", Name: "Tom Ford", Category: "Luxury", Image: "/tomford-logo.png", Featured: true},
}

// Designers returns a copy of the designer directory.
func Designers() []models.Designer {
	out := make([]models.Designer, len(designers))
	copy(out, designers)
	return out
}

// FilterDesigners matches query against designer names, ignoring case, and
// category exactly unless it is empty or AllDesignerCategories.
func FilterDesigners(query, category string) []models.Designer {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Designer, 0, len(designers))
	for _, d := range designers {
		if !strings.Contains(strings.ToLower(d.Name), query) {
			continue
		}
		if category != "" && category != AllDesignerCategories && d.Category != category {
			continue
		}
		out = append(out, d)
	}
	return out
}
