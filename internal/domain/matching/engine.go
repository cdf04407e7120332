package matching

import (
	"fmt"
	"strings"
	"time"
)

// Component weights. They sum to 1.0 so every total lands in [0,1].
const (
	WeightCosine   = 0.45
	WeightSkills   = 0.25
	WeightRole     = 0.15
	WeightLanguage = 0.10
	WeightGeo      = 0.05
)

// Reason thresholds: language counts as met at >= 0.8, location at >= 0.6.
const (
	languageMatchThreshold = 0.8
	locationMatchThreshold = 0.6
)

// JobSide carries the job fields the engine scores on, plus its embedding.
type JobSide struct {
	Skills          []string
	Role            string
	Seniority       string
	Languages       []string
	LocationCity    string
	LocationCountry string
	OnsiteMode      string
	Embedding       []float64
}

// ConsultantSide mirrors JobSide for the consultant profile.
type ConsultantSide struct {
	Skills           []string
	Role             string
	Seniority        string
	Languages        []string
	LocationCity     string
	LocationCountry  string
	OnsiteMode       string
	AvailabilityFrom *time.Time
	Embedding        []float64
}

// Scores is the weighted total plus its component breakdown.
type Scores struct {
	Total    float64
	Cosine   float64
	Skills   float64
	Role     float64
	Language float64
	Geo      float64
}

// Explanation is the human-readable side of a score.
type Explanation struct {
	Summary           string
	SkillsMatched     []string
	SkillsMissing     []string
	LanguageMatch     bool
	LocationMatch     bool
	AvailabilityMatch bool
	Strengths         []string
	Concerns          []string
}

// Result is one scored (job, consultant) pair.
type Result struct {
	Scores      Scores
	Explanation Explanation
}

func Score(j JobSide, c ConsultantSide) Result {
	matched, missing, skillsScore := scoreSkills(j.Skills, c.Skills)

	s := Scores{
		Cosine:   Cosine(j.Embedding, c.Embedding),
		Skills:   skillsScore,
		Role:     scoreRole(j, c),
		Language: scoreLanguage(j.Languages, c.Languages),
		Geo:      scoreGeo(j, c),
	}
	s.Total = clamp01(
		WeightCosine*s.Cosine +
			WeightSkills*s.Skills +
			WeightRole*s.Role +
			WeightLanguage*s.Language +
			WeightGeo*s.Geo)

	return Result{
		Scores:      s,
		Explanation: explain(j, c, s, matched, missing),
	}
}

// scoreSkills gives full credit for an exact case-insensitive match and 0.8
// for a fuzzy match above FuzzyThreshold; an exact match anywhere in the
// consultant list wins over a fuzzy one. It also returns the matched/missing
// lists so the explanation agrees with the score.
func scoreSkills(jobSkills, consultantSkills []string) (matched, missing []string, score float64) {
	matched = []string{}
	missing = []string{}

	if len(jobSkills) == 0 {
		return matched, missing, 1.0
	}
	if len(consultantSkills) == 0 {
		for _, s := range jobSkills {
			missing = append(missing, normalize(s))
		}
		return matched, missing, 0.0
	}

	theirs := make([]string, 0, len(consultantSkills))
	for _, s := range consultantSkills {
		theirs = append(theirs, normalize(s))
	}

	var credits float64
	for _, raw := range jobSkills {
		want := normalize(raw)

		exact := false
		for _, have := range theirs {
			if want == have {
				exact = true
				break
			}
		}
		if exact {
			credits += 1.0
			matched = append(matched, want)
			continue
		}

		fuzzy := ""
		for _, have := range theirs {
			if similarityRatio(want, have) > FuzzyThreshold {
				fuzzy = have
				break
			}
		}
		if fuzzy != "" {
			credits += 0.8
			matched = append(matched, fmt.Sprintf("%s (~%s)", want, fuzzy))
			continue
		}

		missing = append(missing, want)
	}

	return matched, missing, clamp01(credits / float64(len(jobSkills)))
}

var (
	seniorTerms = []string{"senior", "lead", "principal", "architect", "expert"}
	midTerms    = []string{"mid", "intermediate", "experienced", "regular"}
	juniorTerms = []string{"junior", "entry", "trainee", "intern", "graduate"}
)

type seniorityBucket int

const (
	bucketUnknown seniorityBucket = iota
	bucketJunior
	bucketMid
	bucketSenior
)

func bucketOf(seniority string) seniorityBucket {
	if containsAny(seniority, seniorTerms) {
		return bucketSenior
	}
	if containsAny(seniority, midTerms) {
		return bucketMid
	}
	if containsAny(seniority, juniorTerms) {
		return bucketJunior
	}
	return bucketUnknown
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func scoreRole(j JobSide, c ConsultantSide) float64 {
	jobSen := normalize(j.Seniority)
	conSen := normalize(c.Seniority)

	if jobSen != "" && conSen != "" {
		if jobSen == conSen {
			return 1.0
		}

		jb, cb := bucketOf(jobSen), bucketOf(conSen)
		switch {
		case jb != bucketUnknown && jb == cb:
			return 0.9
		case (jb == bucketSenior && cb == bucketMid) || (jb == bucketMid && cb == bucketSenior):
			return 0.6
		default:
			return 0.3
		}
	}

	if j.Role != "" && c.Role != "" {
		if normalize(j.Role) == normalize(c.Role) {
			return 0.8
		}
		return 0.5
	}

	return 0.5
}

func scoreLanguage(jobLanguages, consultantLanguages []string) float64 {
	if len(jobLanguages) == 0 {
		return 1.0
	}
	if len(consultantLanguages) == 0 {
		return 0.0
	}

	theirs := make(map[string]struct{}, len(consultantLanguages))
	for _, l := range consultantLanguages {
		theirs[normalize(l)] = struct{}{}
	}

	hits := 0
	for _, l := range jobLanguages {
		if _, ok := theirs[normalize(l)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(jobLanguages))
}

// Predefined Swedish metro-area clusters for the same-region geo bonus.
var swedishRegions = map[string][]string{
	"stockholm":  {"stockholm", "solna", "sundbyberg", "täby", "nacka", "järfälla"},
	"gothenburg": {"gothenburg", "göteborg", "mölndal", "partille", "kungsbacka"},
	"malmö":      {"malmö", "lund", "helsingborg", "landskrona", "eslöv"},
	"uppsala":    {"uppsala", "enköping", "knivsta", "östhammar"},
}

func regionOf(city string) string {
	for region, cities := range swedishRegions {
		for _, c := range cities {
			if strings.Contains(city, c) {
				return region
			}
		}
	}
	return ""
}

// scoreGeo starts from an onsite-mode compatibility base and layers a single
// location bonus on top: exact city +0.3, same metro region +0.2, same
// country +0.1. Capped at 1.0.
func scoreGeo(j JobSide, c ConsultantSide) float64 {
	jobMode := normalize(j.OnsiteMode)
	conMode := normalize(c.OnsiteMode)

	base := 0.5
	switch {
	case jobMode == "" || conMode == "":
		base = 0.5
	case jobMode == "remote" || conMode == "remote":
		base = 0.9
	case jobMode == "hybrid" && (conMode == "hybrid" || conMode == "onsite"):
		base = 0.7
	case jobMode == conMode:
		base = 0.8
	default:
		base = 0.3
	}

	jobCity := normalize(j.LocationCity)
	conCity := normalize(c.LocationCity)
	if jobCity != "" && conCity != "" {
		if jobCity == conCity {
			return clamp01(base + 0.3)
		}
		if jr, cr := regionOf(jobCity), regionOf(conCity); jr != "" && jr == cr {
			return clamp01(base + 0.2)
		}
	}

	jobCountry := normalize(j.LocationCountry)
	conCountry := normalize(c.LocationCountry)
	if jobCountry != "" && jobCountry == conCountry {
		return clamp01(base + 0.1)
	}

	return base
}

func explain(j JobSide, c ConsultantSide, s Scores, matched, missing []string) Explanation {
	e := Explanation{
		SkillsMatched: matched,
		SkillsMissing: missing,
		LanguageMatch: s.Language >= languageMatchThreshold,
		LocationMatch: s.Geo >= locationMatchThreshold,
		// Availability is not scored yet; a profile with any availability
		// date counts as available.
		AvailabilityMatch: true,
		Strengths:         []string{},
		Concerns:          []string{},
	}

	if s.Cosine >= 0.7 {
		e.Strengths = append(e.Strengths, "Strong overall profile match")
	}

	if n := len(j.Skills); n > 0 {
		detail := fmt.Sprintf("(%d/%d skills)", len(matched), n)
		switch {
		case s.Skills >= 0.8:
			e.Strengths = append(e.Strengths, "Excellent skills match "+detail)
		case s.Skills >= 0.6:
			e.Strengths = append(e.Strengths, "Good skills match "+detail)
		default:
			e.Concerns = append(e.Concerns, "Limited skills match "+detail)
		}
	}

	if s.Role >= 0.8 {
		e.Strengths = append(e.Strengths, "Seniority level matches")
	} else if s.Role <= 0.3 {
		e.Concerns = append(e.Concerns, "Seniority level mismatch")
	}

	if e.LanguageMatch {
		e.Strengths = append(e.Strengths, "Meets language requirements")
	} else {
		e.Concerns = append(e.Concerns, "May not meet all language requirements")
	}

	if e.LocationMatch {
		e.Strengths = append(e.Strengths, "Good location match")
	} else if s.Geo <= 0.3 {
		e.Concerns = append(e.Concerns, "Location mismatch")
	}

	if c.AvailabilityFrom != nil {
		e.Strengths = append(e.Strengths, "Available from "+c.AvailabilityFrom.Format("2006-01-02"))
	}

	e.Summary = summarize(s.Total)
	return e
}

func summarize(total float64) string {
	summary := fmt.Sprintf("Match score: %.0f%%. ", total*100)
	switch {
	case total >= 0.8:
		summary += "Excellent candidate for this position."
	case total >= 0.6:
		summary += "Good candidate worth considering."
	default:
		summary += "Potential candidate with some gaps."
	}
	return summary
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
