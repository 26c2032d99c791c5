package title

// DefaultAbbreviations maps lowercase filename tokens to their canonical
// display form. Media shorthand dominates because filenames in the wild
// carry format and release vocabulary; extend via the config file rather
// than editing this table.
var DefaultAbbreviations = map[string]string{
	"dvd":  "DVD",
	"vhs":  "VHS",
	"cd":   "CD",
	"tv":   "TV",
	"ova":  "OVA",
	"ost":  "OST",
	"hd":   "HD",
	"uhd":  "UHD",
	"hdr":  "HDR",
	"4k":   "4K",
	"3d":   "3D",
	"uk":   "UK",
	"usa":  "USA",
	"nyc":  "NYC",
	"la":   "LA",
	"dj":   "DJ",
	"ai":   "AI",
	"ufo":  "UFO",
	"nasa": "NASA",
	"fbi":  "FBI",
	"ii":   "II",
	"iii":  "III",
	"iv":   "IV",
	"vs":   "vs.",
}

// DefaultSmallWords lists the articles, conjunctions, and short prepositions
// kept lowercase in title casing (except at the phrase boundaries).
var DefaultSmallWords = []string{
	"a", "an", "the",
	"and", "but", "or", "nor", "so", "yet",
	"as", "at", "by", "for", "in", "of", "off", "on", "per", "to", "up", "via",
}
