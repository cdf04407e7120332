package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/scanning"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const SourceBrainville = "brainville"

// BrainvilleScraper walks the public Brainville assignment listings. The
// portal is server-rendered HTML, so listing pages are parsed directly.
type BrainvilleScraper struct {
	params      scanning.ScanParams
	log         *zap.Logger
	baseURL     string
	allowedHost string
	maxPages    int
}

func NewBrainvilleScraper(params scanning.ScanParams, log *zap.Logger) *BrainvilleScraper {
	return NewBrainvilleScraperWithBaseURL(params, log, "https://www.brainville.com")
}

func NewBrainvilleScraperWithBaseURL(params scanning.ScanParams, log *zap.Logger, baseURL string) *BrainvilleScraper {
	if log == nil {
		log = zap.NewNop()
	}
	s := &BrainvilleScraper{
		params:   params,
		log:      log,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		maxPages: 10,
	}
	if s.baseURL == "" {
		s.baseURL = "https://www.brainville.com"
	}
	s.allowedHost = hostFromBaseURL(s.baseURL, "www.brainville.com")
	return s
}

func (s *BrainvilleScraper) Name() string { return SourceBrainville }

type brainvilleListing struct {
	Title       string
	URL         string
	Location    string
	Duration    string
	Description string
	PostedAt    string
}

func (s *BrainvilleScraper) Scrape(ctx context.Context) ([]job.PostingIn, error) {
	if s == nil {
		return nil, fmt.Errorf("nil scraper")
	}

	postings := make([]job.PostingIn, 0, 32)
	seen := map[string]struct{}{}

	for page := 1; page <= s.maxPages; page++ {
		if ctx.Err() != nil {
			return postings, ctx.Err()
		}
		listURL := s.baseURL + "/konsultuppdrag"
		if page > 1 {
			listURL = fmt.Sprintf("%s?page=%d", listURL, page)
		}

		listings, hasNext, err := s.scrapeListingPage(ctx, listURL)
		if err != nil {
			return postings, fmt.Errorf("brainville page %d: %w", page, err)
		}
		if len(listings) == 0 {
			break
		}

		for _, it := range listings {
			p, ok := s.toPosting(it)
			if !ok {
				continue
			}
			if _, dup := seen[p.JobUID]; dup {
				continue
			}
			if !matchesParams(p, s.params) {
				continue
			}
			seen[p.JobUID] = struct{}{}
			postings = append(postings, p)
		}

		if !hasNext {
			break
		}
	}

	s.log.Info("brainville scrape finished", zap.Int("postings", len(postings)))
	return postings, nil
}

func (s *BrainvilleScraper) scrapeListingPage(ctx context.Context, listURL string) ([]brainvilleListing, bool, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, RandomDelay: 850 * time.Millisecond, Delay: 450 * time.Millisecond})

	listings := make([]brainvilleListing, 0)
	hasNext := false

	c.OnHTML(".assignment-item, .job-listing, article.assignment, div.assignment-card", func(e *colly.HTMLElement) {
		var it brainvilleListing
		it.Title = strings.TrimSpace(e.ChildText("h2, h3, .title, .assignment-title"))
		href := strings.TrimSpace(e.ChildAttr("a[href]", "href"))
		if href != "" {
			it.URL = e.Request.AbsoluteURL(href)
		}
		it.Location = strings.TrimSpace(e.ChildText(".location, .assignment-location"))
		it.Duration = strings.TrimSpace(e.ChildText(".duration, .assignment-duration"))
		it.Description = strings.TrimSpace(e.ChildText(".description, .summary, p"))
		it.PostedAt = strings.TrimSpace(e.ChildAttr("time", "datetime"))
		if it.Title != "" {
			listings = append(listings, it)
		}
	})

	c.OnHTML(`.pagination .next, a[rel="next"]`, func(e *colly.HTMLElement) {
		if !strings.Contains(e.Attr("class"), "disabled") {
			hasNext = true
		}
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	if err := c.Visit(listURL); err != nil {
		return nil, false, err
	}
	c.Wait()

	if reqErr != nil {
		return nil, false, reqErr
	}
	return listings, hasNext, nil
}

func (s *BrainvilleScraper) toPosting(it brainvilleListing) (job.PostingIn, bool) {
	if strings.TrimSpace(it.Title) == "" || strings.TrimSpace(it.URL) == "" {
		return job.PostingIn{}, false
	}

	city, country := parseLocation(it.Location)
	role, seniority := parseRoleAndSeniority(it.Title)
	mode, _ := job.ParseOnsiteMode(detectOnsiteMode(it.Location, it.Description))

	return job.PostingIn{
		JobUID:          fmt.Sprintf("%s_%s", SourceBrainville, uidFromURL(it.URL)),
		Source:          SourceBrainville,
		Title:           it.Title,
		Description:     it.Description,
		Skills:          extractSkills(it.Title, it.Description),
		Role:            role,
		Seniority:       seniority,
		Languages:       extractLanguages(it.Description),
		LocationCity:    city,
		LocationCountry: country,
		OnsiteMode:      mode,
		Duration:        it.Duration,
		URL:             it.URL,
		PostedAt:        parseDateOrNil(it.PostedAt),
	}, true
}
