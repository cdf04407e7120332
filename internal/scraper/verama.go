package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/scanning"

	"go.uber.org/zap"
)

const SourceVerama = "verama"

// VeramaScraper reads the public Verama (eWork) job-request API. The API is
// paginated JSON; seniority and language filters are pushed into the query so
// most filtering happens server side.
type VeramaScraper struct {
	params   scanning.ScanParams
	log      *zap.Logger
	baseURL  string
	fetcher  *Fetcher
	maxPages int
	pageSize int
}

func NewVeramaScraper(params scanning.ScanParams, log *zap.Logger) *VeramaScraper {
	return NewVeramaScraperWithBaseURL(params, log, "https://app.verama.com")
}

func NewVeramaScraperWithBaseURL(params scanning.ScanParams, log *zap.Logger, baseURL string) *VeramaScraper {
	if log == nil {
		log = zap.NewNop()
	}
	s := &VeramaScraper{
		params:   params,
		log:      log,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		fetcher:  NewFetcher(time.Second, DefaultRetryPolicy()),
		maxPages: 5,
		pageSize: 50,
	}
	if s.baseURL == "" {
		s.baseURL = "https://app.verama.com"
	}
	return s
}

func (s *VeramaScraper) Name() string { return SourceVerama }

type veramaPage struct {
	Content []veramaJob `json:"content"`
	Last    bool        `json:"last"`
}

type veramaJob struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	SystemID string `json:"systemId"`
	Level    string `json:"level"`
	Client   struct {
		Name string `json:"name"`
	} `json:"client"`
	Locations []struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"locations"`
	Remoteness int `json:"remoteness"`
	Skills     []struct {
		Skill struct {
			Name string `json:"name"`
		} `json:"skill"`
	} `json:"skills"`
	Description            string  `json:"description"`
	StartDate              string  `json:"startDate"`
	EndDate                string  `json:"endDate"`
	FirstDayOfApplications *string `json:"firstDayOfApplications"`
	CreatedDate            *string `json:"createdDate"`
}

func (s *VeramaScraper) Scrape(ctx context.Context) ([]job.PostingIn, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scraper")
	}

	postings := make([]job.PostingIn, 0, 32)
	for page := 1; page <= s.maxPages; page++ {
		var out veramaPage
		if err := s.fetcher.GetJSON(ctx, s.listURL(page), &out); err != nil {
			return postings, fmt.Errorf("verama page %d: %w", page, err)
		}
		if len(out.Content) == 0 {
			break
		}
		for _, vj := range out.Content {
			p, ok := s.toPosting(vj)
			if !ok {
				continue
			}
			if !matchesParams(p, s.params) {
				continue
			}
			postings = append(postings, p)
		}
		if out.Last {
			break
		}
	}

	s.log.Info("verama scrape finished", zap.Int("postings", len(postings)))
	return postings, nil
}

func (s *VeramaScraper) listURL(page int) string {
	q := url.Values{}
	for _, lang := range s.languageCodes() {
		q.Add("languages", lang)
	}
	for _, level := range s.levels() {
		q.Add("level", level)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(s.pageSize))
	q.Set("sort", "firstDayOfApplications,DESC")
	return s.baseURL + "/api/public/job-requests?" + q.Encode()
}

// languageCodes maps the configured language names to the two-letter codes
// the API expects. Unknown names are skipped.
func (s *VeramaScraper) languageCodes() []string {
	codes := map[string]string{
		"swedish": "SV", "english": "EN", "norwegian": "NO",
		"danish": "DA", "finnish": "FI", "german": "DE",
	}
	out := make([]string, 0, 2)
	for _, lang := range s.params.Languages {
		if code, ok := codes[strings.ToLower(strings.TrimSpace(lang))]; ok {
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		out = []string{"SV", "EN"}
	}
	return out
}

func (s *VeramaScraper) levels() []string {
	out := make([]string, 0, 2)
	for _, level := range s.params.SeniorityLevels {
		level = strings.ToUpper(strings.TrimSpace(level))
		if level != "" {
			out = append(out, level)
		}
	}
	if len(out) == 0 {
		out = []string{"SENIOR", "EXPERT"}
	}
	return out
}

func (s *VeramaScraper) toPosting(vj veramaJob) (job.PostingIn, bool) {
	if strings.TrimSpace(vj.Title) == "" || vj.ID == 0 {
		return job.PostingIn{}, false
	}

	city, country := "", "Sweden"
	if len(vj.Locations) > 0 {
		city = vj.Locations[0].City
		country = pickNonEmpty(vj.Locations[0].Country, "Sweden")
	}

	var mode job.OnsiteMode
	switch {
	case vj.Remoteness == 100:
		mode = job.OnsiteModeRemote
	case vj.Remoteness > 0:
		mode = job.OnsiteModeHybrid
	default:
		mode = job.OnsiteModeOnsite
	}

	skills := make([]string, 0, len(vj.Skills))
	for _, sk := range vj.Skills {
		if name := strings.TrimSpace(sk.Skill.Name); name != "" {
			skills = append(skills, name)
		}
	}
	if len(skills) == 0 {
		skills = extractSkills(vj.Title, vj.Description)
	}

	role, _ := parseRoleAndSeniority(vj.Title)

	duration := ""
	if vj.StartDate != "" && vj.EndDate != "" {
		duration = vj.StartDate + " to " + vj.EndDate
	}

	var postedAt *time.Time
	if vj.FirstDayOfApplications != nil {
		postedAt = parseDateOrNil(*vj.FirstDayOfApplications)
	}
	if postedAt == nil && vj.CreatedDate != nil {
		postedAt = parseDateOrNil(*vj.CreatedDate)
	}

	return job.PostingIn{
		JobUID:          fmt.Sprintf("%s_%d", SourceVerama, vj.ID),
		Source:          SourceVerama,
		Title:           vj.Title,
		Description:     vj.Description,
		Skills:          skills,
		Role:            role,
		Seniority:       vj.Level,
		Languages:       extractLanguages(vj.Description),
		LocationCity:    city,
		LocationCountry: country,
		OnsiteMode:      mode,
		Duration:        duration,
		URL:             fmt.Sprintf("%s/job-requests/%d", s.baseURL, vj.ID),
		PostedAt:        postedAt,
	}, true
}
