package scraper

import (
	"strings"

	"assignment-scanner/internal/domain/job"
	"assignment-scanner/internal/domain/scanning"
)

// matchesParams applies the merged scan parameters to one posting. Empty
// parameter lists never filter; a posting missing the data a filter needs
// passes that filter rather than being dropped.
func matchesParams(p job.PostingIn, params scanning.ScanParams) bool {
	if len(params.OnsiteModes) > 0 && p.OnsiteMode != "" {
		if !containsFold(params.OnsiteModes, string(p.OnsiteMode)) {
			return false
		}
	}

	if len(params.SeniorityLevels) > 0 && p.Seniority != "" {
		if !containsFold(params.SeniorityLevels, p.Seniority) {
			return false
		}
	}

	// Remote assignments are location-independent.
	if len(params.TargetLocations) > 0 && p.OnsiteMode != job.OnsiteModeRemote {
		if p.LocationCity != "" || p.LocationCountry != "" {
			hit := false
			for _, loc := range params.TargetLocations {
				loc = strings.ToLower(strings.TrimSpace(loc))
				if loc == "" {
					continue
				}
				if strings.Contains(strings.ToLower(p.LocationCity), loc) ||
					strings.Contains(strings.ToLower(p.LocationCountry), loc) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
	}

	// Role and skill targets act as keywords over the whole posting text.
	keywords := make([]string, 0, len(params.TargetRoles)+len(params.TargetSkills))
	keywords = append(keywords, params.TargetRoles...)
	keywords = append(keywords, params.TargetSkills...)
	if len(keywords) > 0 {
		haystack := strings.ToLower(p.Title + " " + p.Description + " " + p.Role + " " + strings.Join(p.Skills, " "))
		hit := false
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(haystack, kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
