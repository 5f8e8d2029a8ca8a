package safety

// Category is a fast-scorer risk dimension.
type Category string

const (
	CategoryViolence  Category = "violence"
	CategorySexual    Category = "sexual"
	CategoryProfanity Category = "profanity"
)

// Categories lists every category scored by the fast text scorer, in a
// stable order used wherever scores are iterated deterministically.
var Categories = []Category{CategoryViolence, CategorySexual, CategoryProfanity}

// keywordLists are deliberately coarse: the fast scorer trades precision for
// speed, leaving nuance to the judge capability.
var keywordLists = map[Category][]string{
	CategoryViolence: {
		"kill", "murder", "stab", "shoot", "gun", "gore", "behead",
		"massacre", "torture", "suicide", "self-harm", "weapon", "assault",
		"bomb", "terroris", "mutilat", "decapitat", "lynch",
	},
	CategorySexual: {
		"porn", "sex", "nude", "naked", "xxx", "nsfw", "escort", "camgirl",
		"onlyfans", "fetish", "erotic", "hentai", "incest", "rape",
	},
	CategoryProfanity: {
		"fuck", "shit", "bitch", "asshole", "bastard", "cunt", "dick",
		"piss", "slut", "whore", "damn",
	},
}

// HighRiskTokens, when present in a domain or title, force a high-risk
// headline verdict regardless of fast scores.
var HighRiskTokens = []string{
	"porn", "xxx", "nsfw", "escort", "camgirl", "onlyfans", "cp-", "loli",
	"gore", "beheading", "terroris",
}

// LowRiskDomainFragments is the headline analyzer's cheap allowlist
// fragment set — distinct from, and narrower than, the policy engine's
// configured allow-domain set.
var LowRiskDomainFragments = []string{
	"wikipedia.org", ".edu", "khanacademy.org", "nasa.gov", "scholastic.com",
	"pbskids.org", "nationalgeographic.com",
}
