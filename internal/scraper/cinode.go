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

const SourceCinode = "cinode"

// CinodeScraper reads the public Cinode market feed. Listings carry less
// structure than Verama's, so skills and seniority are mined out of the text.
type CinodeScraper struct {
	params   scanning.ScanParams
	log      *zap.Logger
	baseURL  string
	fetcher  *Fetcher
	maxPages int
	pageSize int
}

func NewCinodeScraper(params scanning.ScanParams, log *zap.Logger) *CinodeScraper {
	return NewCinodeScraperWithBaseURL(params, log, "https://app.cinode.com")
}

func NewCinodeScraperWithBaseURL(params scanning.ScanParams, log *zap.Logger, baseURL string) *CinodeScraper {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CinodeScraper{
		params:   params,
		log:      log,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		fetcher:  NewFetcher(time.Second, DefaultRetryPolicy()),
		maxPages: 5,
		pageSize: 25,
	}
	if s.baseURL == "" {
		s.baseURL = "https://app.cinode.com"
	}
	return s
}

func (s *CinodeScraper) Name() string { return SourceCinode }

type cinodePage struct {
	Result     []cinodeAnnouncement `json:"result"`
	Pagination struct {
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

type cinodeAnnouncement struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	PublishedAt *string  `json:"publishedDate"`
	SkillNames  []string `json:"skills"`
}

func (s *CinodeScraper) Scrape(ctx context.Context) ([]job.PostingIn, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scraper")
	}

	postings := make([]job.PostingIn, 0, 32)
	for page := 1; page <= s.maxPages; page++ {
		var out cinodePage
		if err := s.fetcher.GetJSON(ctx, s.listURL(page), &out); err != nil {
			return postings, fmt.Errorf("cinode page %d: %w", page, err)
		}
		if len(out.Result) == 0 {
			break
		}
		for _, ann := range out.Result {
			p, ok := s.toPosting(ann)
			if !ok {
				continue
			}
			if !matchesParams(p, s.params) {
				continue
			}
			postings = append(postings, p)
		}
		if out.Pagination.TotalPages > 0 && page >= out.Pagination.TotalPages {
			break
		}
	}

	s.log.Info("cinode scrape finished", zap.Int("postings", len(postings)))
	return postings, nil
}

func (s *CinodeScraper) listURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(s.pageSize))
	if kw := strings.Join(s.params.TargetSkills, " "); strings.TrimSpace(kw) != "" {
		q.Set("term", kw)
	}
	return s.baseURL + "/api/market/announcements?" + q.Encode()
}

func (s *CinodeScraper) toPosting(ann cinodeAnnouncement) (job.PostingIn, bool) {
	if strings.TrimSpace(ann.Title) == "" || ann.ID == 0 {
		return job.PostingIn{}, false
	}

	city, country := parseLocation(ann.Location)
	role, seniority := parseRoleAndSeniority(ann.Title)
	mode, _ := job.ParseOnsiteMode(detectOnsiteMode(ann.Location, ann.Description))

	skills := make([]string, 0, len(ann.SkillNames))
	for _, name := range ann.SkillNames {
		if name = strings.TrimSpace(name); name != "" {
			skills = append(skills, name)
		}
	}
	if len(skills) == 0 {
		skills = extractSkills(ann.Title, ann.Description)
	}

	duration := ""
	if ann.StartDate != "" && ann.EndDate != "" {
		duration = ann.StartDate + " to " + ann.EndDate
	}

	var postedAt *time.Time
	if ann.PublishedAt != nil {
		postedAt = parseDateOrNil(*ann.PublishedAt)
	}

	return job.PostingIn{
		JobUID:          fmt.Sprintf("%s_%d", SourceCinode, ann.ID),
		Source:          SourceCinode,
		Title:           ann.Title,
		Description:     ann.Description,
		Skills:          skills,
		Role:            role,
		Seniority:       seniority,
		Languages:       extractLanguages(ann.Description),
		LocationCity:    city,
		LocationCountry: country,
		OnsiteMode:      mode,
		Duration:        duration,
		URL:             fmt.Sprintf("%s/market/announcements/%d", s.baseURL, ann.ID),
		PostedAt:        postedAt,
	}, true
}
