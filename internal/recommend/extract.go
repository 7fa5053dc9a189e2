package recommend

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

// preferenceThreshold is the minimum Jaro-Winkler score for a phonetically
// matched archetype alias to count as an explicit recommendation.
const preferenceThreshold = 0.8

var (
	occupantsRe = regexp.MustCompile(`\b(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:people|occupants|adults|of us|of them)\b`)
	familyOfRe  = regexp.MustCompile(`\bfamily of (\d+|one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	bathroomsRe = regexp.MustCompile(`\b(\d+|one|two|three|four|five|six)\s+bath(?:room)?s?\b`)
	bedroomsRe  = regexp.MustCompile(`\b(\d+|one|two|three|four|five|six|seven|eight)\s+bed(?:room)?s?\b`)
	pressureRe  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*bar\b`)
	flowRe      = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:litres? per minute|liters? per minute|l/min|lpm)\b`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// recommendationCues mark phrasing where the surveyor states a system
// preference rather than describing the property.
var recommendationCues = []string{
	"i'd recommend", "i would recommend", "recommend",
	"i'd go for", "i would go for", "go for",
	"best option", "i'd suggest", "i would suggest", "suggest",
	"i'd put in", "we should fit", "my pick",
}

// archetypeAliases maps catalog keys to the phrases surveyors use for them.
// Matching is phonetic, so transcription mangling ("mixer gee") still lands.
var archetypeAliases = map[string][]string{
	"combi":             {"combi", "combination boiler"},
	"system-unvented":   {"unvented", "megaflo", "pressurised cylinder", "pressurized cylinder"},
	"regular-open-vent": {"regular boiler", "heat only", "conventional boiler", "open vented"},
	"system-mixergy":    {"mixergy"},
	"ashp-cylinder":     {"heat pump", "air source"},
}

// ExtractRequirements builds a [Requirements] record from raw transcript text
// using keyword and figure scanning alone. It is the deterministic
// alternative to the gateway's requirements-extraction task: no model call,
// same record shape.
//
// catalog supplies the archetype keys for expert-preference detection; pass
// [DefaultCatalog] unless scoring against a custom catalog.
func ExtractRequirements(transcript string, catalog []SystemProfile) Requirements {
	lower := strings.ToLower(transcript)
	req := Requirements{
		Occupants: firstCount(lower, occupantsRe, familyOfRe),
		Bathrooms: firstCount(lower, bathroomsRe),
		Bedrooms:  firstCount(lower, bedroomsRe),
	}

	if m := pressureRe.FindStringSubmatch(lower); m != nil {
		req.MainsPressureBar, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := flowRe.FindStringSubmatch(lower); m != nil {
		req.MainsFlowLpm, _ = strconv.ParseFloat(m[1], 64)
	}

	req.CurrentSystem, req.OpenVented = detectCurrentSystem(lower)

	req.SpaceConstrained = containsAny(lower,
		"no room", "no space", "limited space", "tight on space", "tight for space",
		"small kitchen", "compact", " flat ", "apartment")
	req.SmartControls = containsAny(lower,
		"smart", "app control", "from their phone", "from your phone", "hive", "nest")
	req.Renewables = containsAny(lower,
		"solar", "heat pump", "renewable", "green energy")
	req.LowBudget = containsAny(lower,
		"budget", "cheapest", "keep the cost", "cost conscious", "as cheap as")

	req.PreferredArchetype = detectPreference(lower, catalog)
	return req
}

// firstCount returns the first count any of the patterns matches, or 0.
func firstCount(text string, patterns ...*regexp.Regexp) int {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, ok := numberWords[m[1]]; ok {
			return n
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

func detectCurrentSystem(text string) (system string, openVented bool) {
	openVented = containsAny(text,
		"open vented", "open-vented", "gravity fed", "gravity system",
		"tanks in the loft", "tank in the loft", "loft tank", "header tank")

	switch {
	case strings.Contains(text, "back boiler"):
		// Back boilers are always gravity fed.
		return "back-boiler", true
	case strings.Contains(text, "combi"):
		return "combi", openVented
	case strings.Contains(text, "system boiler"):
		return "system", openVented
	case strings.Contains(text, "electric boiler") || strings.Contains(text, "immersion only"):
		return "electric", openVented
	case openVented || containsAny(text, "regular boiler", "heat only", "conventional boiler"):
		return "regular", openVented
	default:
		return "", openVented
	}
}

// detectPreference returns the catalog key of an archetype the surveyor
// explicitly recommended, or "". A recommendation cue must be present; the
// alias itself is matched phonetically so transcription errors survive.
func detectPreference(text string, catalog []SystemProfile) string {
	cueAt := -1
	for _, cue := range recommendationCues {
		if i := strings.Index(text, cue); i >= 0 && (cueAt == -1 || i < cueAt) {
			cueAt = i
		}
	}
	if cueAt == -1 {
		return ""
	}

	// Only the clause after the first cue counts as the recommendation.
	clause := text[cueAt:]
	tokens := strings.Fields(clause)

	bestKey, bestScore := "", 0.0
	for _, p := range catalog {
		for _, alias := range archetypeAliases[p.Key] {
			if score := bestAliasScore(tokens, alias); score > bestScore {
				bestKey, bestScore = p.Key, score
			}
		}
	}
	if bestScore >= preferenceThreshold {
		return bestKey
	}
	return ""
}

// bestAliasScore finds the strongest phonetic-plus-similarity match between
// the alias and any window of transcript tokens of the same word length.
func bestAliasScore(tokens []string, alias string) float64 {
	aliasTokens := strings.Fields(alias)
	width := len(aliasTokens)
	if width == 0 || len(tokens) < width {
		return 0
	}
	aliasJoined := strings.Join(aliasTokens, " ")
	aliasCodes := phoneticCodes(aliasTokens)

	best := 0.0
	for i := 0; i+width <= len(tokens); i++ {
		window := tokens[i : i+width]
		if !codesOverlap(phoneticCodes(window), aliasCodes) {
			continue
		}
		if s := matchr.JaroWinkler(strings.Join(window, " "), aliasJoined, false); s > best {
			best = s
		}
	}
	return best
}

// phoneticCodes returns the union of Double Metaphone codes for the tokens.
func phoneticCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		t = strings.Trim(t, ".,;:!?'\"")
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
