// Package category tags market questions with a fixed topic taxonomy using
// ordered keyword matching. The priority order and keyword sets are policy:
// changing them changes which markets survive per-category caps downstream.
package category

import "strings"

type Tag string

const (
	Politics      Tag = "politics"
	Sports        Tag = "sports"
	Crypto        Tag = "crypto"
	Tech          Tag = "tech"
	Entertainment Tag = "entertainment"
	Economy       Tag = "economy"
	Climate       Tag = "climate"
	Health        Tag = "health"
	Other         Tag = "other"
)

// keywordSets are tested in order; the first matching category wins, so a
// title matching both "election" and "bitcoin" is politics.
var keywordSets = []struct {
	tag      Tag
	keywords []string
}{
	{Politics, []string{
		"election", "president", "presidential", "vote", "voting", "congress", "senate", "senator",
		"minister", "government", "governor", "mayor", "politician", "political", "candidate",
		"fed", "federal", "rate", "interest", "chancellor", "prime minister", "biden", "trump",
		"harris", "desantis", "republican", "democrat", "gop", "party", "campaign", "debate",
		"poll", "electoral", "impeach", "cabinet", "white house", "policy", "law", "legislation",
		"supreme court", "justice", "scotus", "midterm", "2024", "2025", "inauguration",
	}},
	{Sports, []string{
		"nba", "nfl", "mlb", "nhl", "soccer", "football", "basketball", "baseball", "hockey",
		"league", "cup", "championship", "playoffs", "win", "wins", "relegated", "super bowl",
		"world cup", "olympics", "fifa", "uefa", "champions league", "epl", "premier league",
		"la liga", "bundesliga", "serie a", "mvp", "rookie", "draft", "trade", "player",
		"team", "coach", "manager", "season", "finals", "semifinal", "quarterback", "goal",
		"touchdown", "home run", "points", "score", "games", "match", "tournament", "tennis",
		"golf", "pga", "masters", "wimbledon", "open", "formula 1", "f1", "racing",
	}},
	{Crypto, []string{
		"bitcoin", "btc", "ethereum", "eth", "crypto", "cryptocurrency", "token", "blockchain",
		"opensea", "nft", "defi", "solana", "sol", "cardano", "ada", "dogecoin", "doge",
		"binance", "coinbase", "exchange", "wallet", "mining", "hash", "altcoin", "satoshi",
		"web3", "dao", "smart contract", "yield", "staking", "liquidity", "usd", "usdc",
		"price", "$100", "$50", "$1000", "coin", "market cap", "volume", "trading",
	}},
	{Tech, []string{
		"ai", "artificial intelligence", "openai", "chatgpt", "gpt", "technology", "software",
		"app", "application", "launch", "google", "apple", "microsoft", "meta", "facebook",
		"amazon", "tesla", "elon musk", "twitter", "x.com", "iphone", "android", "ios",
		"startup", "ipo", "stock", "valuation", "revenue", "company", "ceo", "tech",
		"computer", "robot", "automation", "cloud", "data", "internet", "cyber", "security",
	}},
	{Entertainment, []string{
		"movie", "film", "actor", "actress", "director", "award", "oscar", "academy", "golden globe",
		"emmy", "grammy", "song", "album", "artist", "singer", "show", "tv", "television",
		"streaming", "netflix", "disney", "marvel", "star wars", "hollywood", "box office",
		"celebrity", "fame", "concert", "tour", "music", "video", "youtube", "tiktok",
		"instagram", "social media", "influencer", "podcast", "series", "season", "episode",
	}},
	{Economy, []string{
		"economy", "economic", "recession", "inflation", "gdp", "unemployment", "jobs",
		"market", "stock market", "dow", "nasdaq", "s&p", "sp500", "bear market", "bull market",
		"interest rate", "federal reserve", "bank", "banking", "finance", "financial",
		"dollar", "euro", "currency", "trade", "tariff", "debt", "deficit", "budget",
	}},
	{Climate, []string{
		"climate", "global warming", "temperature", "weather", "hurricane", "storm",
		"flood", "drought", "wildfire", "carbon", "emissions", "renewable", "solar",
		"wind", "electric", "ev", "environment", "green", "sustainability",
	}},
	{Health, []string{
		"health", "medical", "disease", "virus", "vaccine", "covid", "pandemic",
		"hospital", "doctor", "medicine", "drug", "fda", "approval", "treatment",
		"cure", "clinical", "trial", "study", "research",
	}},
}

// Detect returns the first category whose keyword set matches the text,
// case-insensitively, or Other when nothing matches.
func Detect(text string) Tag {
	q := strings.ToLower(text)
	for _, set := range keywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(q, keyword) {
				return set.tag
			}
		}
	}
	return Other
}

// All returns the taxonomy in priority order, Other last.
func All() []Tag {
	tags := make([]Tag, 0, len(keywordSets)+1)
	for _, set := range keywordSets {
		tags = append(tags, set.tag)
	}
	return append(tags, Other)
}

// Valid reports whether s names a known tag.
func Valid(s string) bool {
	for _, tag := range All() {
		if string(tag) == s {
			return true
		}
	}
	return false
}
