package scraper

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// uidFromURL derives a stable identifier from a posting URL. The last path
// segment is used when it looks like an ID; otherwise the sha1 of the whole
// URL stands in.
func uidFromURL(raw string) string {
	trimmed := strings.TrimRight(raw, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx+1 < len(trimmed) {
		seg := trimmed[idx+1:]
		if seg != "" && !strings.ContainsAny(seg, "?&=") {
			return seg
		}
	}
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// skillKeywords is the canonical skill vocabulary mined out of job text.
// The map value is the canonical spelling stored on the posting.
var skillKeywords = []string{
	"Python", "Java", "JavaScript", "TypeScript", "C#", ".NET", "C++",
	"Go", "Golang", "Rust", "Kotlin", "Swift", "Ruby", "PHP", "Scala",
	"Bash", "PowerShell", "SQL",
	"React", "Angular", "Vue", "Next.js", "HTML", "CSS", "Tailwind",
	"GraphQL", "Redux",
	"Node.js", "Express", "NestJS", "Django", "Flask", "FastAPI",
	"Spring", "Spring Boot", "ASP.NET", "Rails", "Laravel",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch",
	"Cassandra", "DynamoDB", "Oracle", "SQL Server", "SQLite", "Snowflake",
	"BigQuery",
	"AWS", "Azure", "GCP", "Google Cloud", "Docker", "Kubernetes",
	"Jenkins", "GitLab", "GitHub Actions", "Terraform", "Ansible",
	"Helm", "ArgoCD", "Prometheus", "Grafana", "Datadog",
	"Machine Learning", "Deep Learning", "TensorFlow", "PyTorch",
	"Pandas", "NumPy", "Spark", "Kafka", "Airflow", "Databricks",
	"iOS", "Android", "React Native", "Flutter",
	"Microservices", "REST", "gRPC", "OAuth", "SAML",
	"SAP", "Salesforce", "ServiceNow", "SharePoint", "Dynamics",
	"Linux", "Agile", "Scrum", "Kanban", "DevOps", "CI/CD", "Git",
}

var (
	skillPatternsOnce sync.Once
	skillPatterns     []*regexp.Regexp
)

// extractSkills scans free text for known skill keywords, returning canonical
// spellings without duplicates.
func extractSkills(parts ...string) []string {
	skillPatternsOnce.Do(func() {
		skillPatterns = make([]*regexp.Regexp, len(skillKeywords))
		for i, kw := range skillKeywords {
			skillPatterns[i] = regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(strings.ToLower(kw)) + `($|[^a-z0-9+#])`)
		}
	})
	text := strings.ToLower(strings.Join(parts, " "))
	found := make([]string, 0, 8)
	seen := map[string]struct{}{}
	for i, re := range skillPatterns {
		if !re.MatchString(text) {
			continue
		}
		if _, ok := seen[skillKeywords[i]]; ok {
			continue
		}
		seen[skillKeywords[i]] = struct{}{}
		found = append(found, skillKeywords[i])
	}
	sort.Strings(found)
	return found
}

var languageKeywords = []struct {
	name     string
	patterns []string
}{
	{"Swedish", []string{"swedish", "svenska", "svensk"}},
	{"English", []string{"english", "engelska"}},
	{"Norwegian", []string{"norwegian", "norska", "norsk"}},
	{"Danish", []string{"danish", "danska", "dansk"}},
	{"Finnish", []string{"finnish", "finska", "finsk"}},
	{"German", []string{"german", "tyska", "deutsch"}},
	{"French", []string{"french", "franska"}},
	{"Spanish", []string{"spanish", "spanska"}},
}

// extractLanguages finds spoken-language requirements in free text. Swedish
// and English are assumed when nothing is stated, since every supported
// portal serves the Swedish market.
func extractLanguages(parts ...string) []string {
	text := strings.ToLower(strings.Join(parts, " "))
	out := make([]string, 0, 2)
	for _, lang := range languageKeywords {
		for _, p := range lang.patterns {
			if strings.Contains(text, p) {
				out = append(out, lang.name)
				break
			}
		}
	}
	if len(out) == 0 {
		out = []string{"Swedish", "English"}
	}
	return out
}

// detectOnsiteMode looks for work-mode markers in location and description
// text. Returns "" when nothing matches; the caller keeps the mode unknown.
func detectOnsiteMode(parts ...string) string {
	text := strings.ToLower(strings.Join(parts, " "))
	for _, term := range []string{"remote", "distans", "hemma", "distributed"} {
		if strings.Contains(text, term) {
			return "remote"
		}
	}
	for _, term := range []string{"hybrid", "delvis", "partial", "flexibel"} {
		if strings.Contains(text, term) {
			return "hybrid"
		}
	}
	for _, term := range []string{"onsite", "on-site", "kontor", "office"} {
		if strings.Contains(text, term) {
			return "onsite"
		}
	}
	return ""
}

var swedishCities = []string{
	"Stockholm", "Göteborg", "Gothenburg", "Malmö", "Uppsala",
	"Västerås", "Örebro", "Linköping", "Helsingborg", "Jönköping",
	"Norrköping", "Lund", "Umeå", "Gävle", "Borås", "Sundsvall",
	"Eskilstuna", "Södertälje", "Karlstad", "Täby", "Växjö",
}

// parseLocation splits a free-form location into (city, country). Unmatched
// strings fall back to Sweden with the raw text as city.
func parseLocation(location string) (string, string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", "Sweden"
	}
	lower := strings.ToLower(location)
	for _, city := range swedishCities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city, "Sweden"
		}
	}
	switch {
	case containsAny(lower, "norge", "norway", "oslo", "bergen"):
		return location, "Norway"
	case containsAny(lower, "danmark", "denmark", "copenhagen", "köpenhamn"):
		return location, "Denmark"
	case containsAny(lower, "finland", "helsinki", "helsingfors"):
		return location, "Finland"
	}
	return location, "Sweden"
}

var rolePatterns = []struct {
	role     string
	patterns []string
}{
	{"Backend Developer", []string{"backend", "back-end"}},
	{"Frontend Developer", []string{"frontend", "front-end"}},
	{"Full Stack Developer", []string{"fullstack", "full-stack", "full stack"}},
	{"DevOps Engineer", []string{"devops", "dev ops"}},
	{"Data Engineer", []string{"data engineer"}},
	{"Data Scientist", []string{"data scientist"}},
	{"ML Engineer", []string{"ml engineer", "machine learning engineer"}},
	{"Cloud Architect", []string{"cloud architect"}},
	{"Solution Architect", []string{"solution architect", "lösningsarkitekt"}},
	{"Software Architect", []string{"software architect", "arkitekt"}},
	{"Tech Lead", []string{"tech lead", "technical lead", "teknisk ledare"}},
	{"Scrum Master", []string{"scrum master"}},
	{"Project Manager", []string{"project manager", "projektledare"}},
	{"Product Owner", []string{"product owner", "produktägare"}},
	{"QA Engineer", []string{"qa", "test", "quality"}},
	{"Security Engineer", []string{"security", "säkerhet"}},
	{"Platform Engineer", []string{"platform engineer"}},
	{"Site Reliability Engineer", []string{"sre", "site reliability"}},
	{"Mobile Developer", []string{"mobile", "ios", "android"}},
	{"Embedded Developer", []string{"embedded"}},
	{"Consultant", []string{"konsult", "consultant"}},
}

// parseRoleAndSeniority derives a normalized role and seniority label from a
// job title. Either return value may be empty.
func parseRoleAndSeniority(title string) (string, string) {
	lower := strings.ToLower(title)

	role := ""
	for _, rp := range rolePatterns {
		if containsAny(lower, rp.patterns...) {
			role = rp.role
			break
		}
	}
	if role == "" {
		switch {
		case strings.Contains(lower, "developer") || strings.Contains(lower, "utvecklare"):
			role = "Software Developer"
		case strings.Contains(lower, "engineer") || strings.Contains(lower, "ingenjör"):
			role = "Software Engineer"
		}
	}

	seniority := ""
	switch {
	case containsAny(lower, "senior", "sr.", "lead", "principal", "staff"):
		seniority = "Senior"
	case containsAny(lower, "junior", "jr.", "entry"):
		seniority = "Junior"
	case containsAny(lower, "mid", "medior"):
		seniority = "Mid"
	}

	return role, seniority
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseDateOrNil tries the date formats the portals emit. Unparseable input
// yields nil rather than an error; a missing date never fails a posting.
func parseDateOrNil(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			tm = tm.UTC()
			return &tm
		}
	}
	return nil
}
