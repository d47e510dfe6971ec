package domain

// CategoryOther is the tag used for assets whose category is not in the catalog.
const CategoryOther = "その他"

// FallbackUsefulLife is used when a category has no catalog entry.
const FallbackUsefulLife = 5

// CategoryLife pairs a category name with its default useful life in years
type CategoryLife struct {
	Name       string `json:"name"`
	UsefulLife int    `json:"usefulLifeYears"`
}

// catalog is ordered as presented in pickers. Values follow the
// manufacturers' spare-part retention periods or the statutory useful life.
var catalog = []CategoryLife{
	{"テレビ", 8},
	{"冷蔵庫", 10},
	{"洗濯機", 7},
	{"掃除機", 7},
	{"エアコン", 10},
	{"電子レンジ", 10},
	{"炊飯器", 6},
	{"食洗機", 7},
	{"PC", 4},
	{"タブレット", 4},
	{"スマートフォン", 3},
	{"時計", 10},
	{"カメラ", 5},
	{"プリンター/複合機", 5},
	{"スキャナー", 5},
	{"ルータ/ネットワーク", 5},
	{"オーディオ", 7},
	{"照明", 10},
	{"家具", 10},
}

// DefaultUsefulLife returns the catalog useful life for a category.
// ok is false for names that are not in the catalog, including CategoryOther.
func DefaultUsefulLife(category string) (years int, ok bool) {
	for _, c := range catalog {
		if c.Name == category {
			return c.UsefulLife, true
		}
	}
	return 0, false
}

// ResolveUsefulLife returns the catalog default or FallbackUsefulLife
func ResolveUsefulLife(category string) int {
	if years, ok := DefaultUsefulLife(category); ok {
		return years
	}
	return FallbackUsefulLife
}

// IsKnownCategory reports whether the name is a catalog entry or CategoryOther
func IsKnownCategory(category string) bool {
	if category == CategoryOther {
		return true
	}
	_, ok := DefaultUsefulLife(category)
	return ok
}

// Catalog returns a copy of the catalog followed by CategoryOther.
func Catalog() []CategoryLife {
	out := make([]CategoryLife, 0, len(catalog)+1)
	out = append(out, catalog...)
	return append(out, CategoryLife{Name: CategoryOther, UsefulLife: FallbackUsefulLife})
}
