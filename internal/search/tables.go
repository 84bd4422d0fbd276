package search

import "sort"

// Synonyms maps product words to terms that indicate the same kind of goods
// in schedule descriptions.
var Synonyms = map[string][]string{
	"tire":       {"tire", "tyre", "pneumatic", "rubber", "vehicle", "automotive", "wheel"},
	"tires":      {"tire", "tyre", "pneumatic", "rubber", "vehicle", "automotive", "wheel"},
	"computer":   {"computer", "computing", "processor", "electronic", "data", "automatic", "digital"},
	"laptop":     {"computer", "portable", "notebook", "electronic", "automatic", "processing"},
	"phone":      {"telephone", "cellular", "mobile", "communication", "apparatus"},
	"smartphone": {"telephone", "cellular", "mobile", "communication", "electronic", "apparatus"},
	"chair":      {"chair", "seating", "furniture", "seat"},
	"chairs":     {"chair", "seating", "furniture", "seat"},
	"table":      {"table", "furniture", "desk"},
	"tables":     {"table", "furniture", "desk"},
	"clothing":   {"clothing", "garment", "apparel", "wearing"},
	"shirt":      {"shirt", "garment", "clothing", "wearing"},
	"shoes":      {"footwear", "shoe", "boot"},
	"book":       {"book", "printed", "publication"},
	"books":      {"book", "printed", "publication"},
	"bottle":     {"bottle", "container", "receptacle", "vessel", "packaging"},
	"bottles":    {"bottle", "container", "receptacle", "vessel", "packaging"},
}

// Materials maps material words to the terms schedule descriptions use for them.
var Materials = map[string][]string{
	"rubber":     {"rubber", "tire", "tyre", "pneumatic"},
	"wooden":     {"wood", "timber", "furniture"},
	"metal":      {"metal", "steel", "iron", "aluminum"},
	"plastic":    {"plastic", "polymer"},
	"electronic": {"electronic", "electrical", "digital"},
	"textile":    {"textile", "fabric", "clothing"},
	"glass":      {"glass", "bottle", "container"},
}

// ChapterWeights maps product and material words to weighted chapters.
var ChapterWeights = map[string]map[string]int{
	"tire":       {"40": 60, "87": 30},
	"tires":      {"40": 60, "87": 30},
	"rubber":     {"40": 50},
	"computer":   {"84": 50, "85": 30},
	"laptop":     {"84": 60},
	"phone":      {"85": 60},
	"smartphone": {"85": 60},
	"chair":      {"94": 60},
	"furniture":  {"94": 50},
	"wooden":     {"44": 40, "94": 30},
	"metal":      {"72": 30, "73": 30},
	"plastic":    {"39": 40},
	"electronic": {"85": 40, "84": 30},
	"bottle":     {"39": 50, "70": 40},
	"bottles":    {"39": 50, "70": 40},
}

// TargetChapters ranks the chapters suggested by the query tokens,
// heaviest first, and returns at most n of them.
func TargetChapters(tokens []string, n int) []string {
	weights := make(map[string]int)
	for _, tok := range tokens {
		for ch, w := range ChapterWeights[tok] {
			weights[ch] += w
		}
	}

	chapters := make([]string, 0, len(weights))
	for ch := range weights {
		chapters = append(chapters, ch)
	}
	sort.Slice(chapters, func(i, j int) bool {
		if weights[chapters[i]] != weights[chapters[j]] {
			return weights[chapters[i]] > weights[chapters[j]]
		}
		return chapters[i] < chapters[j]
	})

	if len(chapters) > n {
		chapters = chapters[:n]
	}
	return chapters
}
