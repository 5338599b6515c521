package analyze

// baseTiers encodes the static semantic rarity of known tags, 1 (ubiquitous)
// to 5 (exotic). Unknown tags default to 1.
var baseTiers = map[string]int{
	// Tier 1: the everyday skeleton of a page.
	"html": 1, "head": 1, "body": 1, "title": 1,
	"div": 1, "p": 1, "a": 1, "span": 1, "img": 1,
	"ul": 1, "li": 1, "br": 1, "h1": 1, "h2": 1, "h3": 1,
	"strong": 1, "em": 1, "b": 1, "i": 1,
	"header": 1, "footer": 1, "nav": 1, "main": 1, "section": 1,
	"button": 1, "input": 1, "form": 1, "label": 1,

	// Tier 2: common but not on every page.
	"h4": 2, "h5": 2, "h6": 2, "ol": 2, "hr": 2,
	"table": 2, "thead": 2, "tbody": 2, "tr": 2, "td": 2, "th": 2,
	"select": 2, "option": 2, "textarea": 2, "iframe": 2,
	"article": 2, "aside": 2, "figure": 2, "figcaption": 2,
	"small": 2, "u": 2, "s": 2, "picture": 2, "source": 2,

	// Tier 3: specialized content.
	"video": 3, "audio": 3, "canvas": 3, "blockquote": 3,
	"pre": 3, "code": 3, "dl": 3, "dt": 3, "dd": 3,
	"fieldset": 3, "legend": 3, "details": 3, "summary": 3,
	"time": 3, "address": 3, "caption": 3, "optgroup": 3,

	// Tier 4: rarely hand-written.
	"svg": 4, "map": 4, "area": 4, "track": 4, "wbr": 4,
	"abbr": 4, "cite": 4, "kbd": 4, "samp": 4, "var": 4,
	"sub": 4, "sup": 4, "mark": 4, "q": 4, "ins": 4, "del": 4,
	"template": 4, "datalist": 4, "output": 4, "meter": 4, "progress": 4,

	// Tier 5: exotic.
	"ruby": 5, "rt": 5, "rp": 5, "math": 5, "embed": 5,
	"object": 5, "param": 5, "dialog": 5, "slot": 5,
	"bdi": 5, "bdo": 5, "menu": 5,
}

// BaseTier returns the static rarity tier for a tag.
func BaseTier(tag string) int {
	if t, ok := baseTiers[tag]; ok {
		return t
	}
	return 1
}

// EffectiveRarity combines the static tier with a frequency-based floor:
// a tag appearing on few of this crawl's pages is raised to at least the
// corresponding tier. The floor never lowers the base tier.
func EffectiveRarity(tag string, pageCount, totalPages int) int {
	base := BaseTier(tag)
	if totalPages <= 0 {
		return base
	}
	floor := frequencyFloor(float64(pageCount) / float64(totalPages))
	if floor > base {
		return floor
	}
	return base
}

func frequencyFloor(fraction float64) int {
	switch {
	case fraction < 0.1:
		return 4
	case fraction < 0.3:
		return 3
	case fraction < 0.5:
		return 2
	default:
		return 1
	}
}
