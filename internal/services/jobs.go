package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

// JobQuery describes the candidate a job search is run for.
type JobQuery struct {
	Role     string
	Domain   string
	Skills   []string
	ATSScore int
	Limit    int
}

// JobSearcher returns scored postings for a candidate.
type JobSearcher interface {
	Search(ctx context.Context, query JobQuery) ([]models.JobMatch, error)
}

// JobProvider is one source of raw postings.
type JobProvider interface {
	Name() string
	Fetch(ctx context.Context, query JobQuery) ([]models.JobPosting, error)
}

// MatchScorer rates a posting against a candidate using the catalog weights.
type MatchScorer struct {
	weights config.MatchWeights
}

func NewMatchScorer(weights config.MatchWeights) *MatchScorer {
	return &MatchScorer{weights: weights}
}

func (s *MatchScorer) Score(job models.JobPosting, skills []string, atsScore int) int {
	w := s.weights
	score := w.Base

	text := strings.ToLower(job.Title + " " + job.Description)
	for _, skill := range skills {
		if skill = strings.ToLower(strings.TrimSpace(skill)); skill != "" && strings.Contains(text, skill) {
			score += w.PerSkill
		}
	}

	switch {
	case atsScore >= w.ATSHighThreshold:
		score += w.ATSHighBonus
	case atsScore >= w.ATSMidThreshold:
		score += w.ATSMidBonus
	}

	if strings.Contains(strings.ToLower(job.Location), "remote") {
		score += w.RemoteBonus
	}

	return max(0, min(100, score))
}

type multiJobSearcher struct {
	providers []JobProvider
	scorer    *MatchScorer
	logger    *zap.Logger
}

// NewMultiJobSearcher fans a query out to every provider concurrently. It fails
// only when every provider fails.
func NewMultiJobSearcher(scorer *MatchScorer, log *zap.Logger, providers ...JobProvider) JobSearcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &multiJobSearcher{providers: providers, scorer: scorer, logger: log}
}

// Search implements JobSearcher.
func (m *multiJobSearcher) Search(ctx context.Context, query JobQuery) ([]models.JobMatch, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("%w: no job providers configured", models.ErrUpstreamUnavailable)
	}

	results := make([][]models.JobPosting, len(m.providers))
	errs := make([]error, len(m.providers))

	var g errgroup.Group
	for i, provider := range m.providers {
		g.Go(func() error {
			postings, err := provider.Fetch(ctx, query)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", provider.Name(), err)
				m.logger.Warn("job provider failed", zap.String("provider", provider.Name()), zap.Error(err))
				return nil
			}
			results[i] = postings
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(m.providers) {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, errors.Join(errs...))
	}

	seen := make(map[string]struct{})
	matches := make([]models.JobMatch, 0)
	for _, postings := range results {
		for _, job := range postings {
			key := strings.ToLower(strings.TrimSpace(job.Title)) + "|" + strings.ToLower(strings.TrimSpace(job.Company))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			matches = append(matches, models.JobMatch{
				JobPosting: job,
				MatchScore: m.scorer.Score(job, query.Skills, query.ATSScore),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if query.Limit > 0 && len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	return matches, nil
}

// SyntheticJobProvider builds postings from the catalog templates for a domain.
type SyntheticJobProvider struct {
	catalog *config.Catalog
}

func NewSyntheticJobProvider(catalog *config.Catalog) *SyntheticJobProvider {
	return &SyntheticJobProvider{catalog: catalog}
}

func (p *SyntheticJobProvider) Name() string { return "synthetic" }

func (p *SyntheticJobProvider) Fetch(_ context.Context, query JobQuery) ([]models.JobPosting, error) {
	templates := p.catalog.JobTemplatesFor(query.Domain)

	skills := firstN(query.Skills, 3)
	skillText := "modern tooling"
	if len(skills) > 0 {
		skillText = strings.Join(skills, ", ")
	}

	jobs := make([]models.JobPosting, 0, len(templates))
	for i, tmpl := range templates {
		location := "Remote"
		if i%2 == 1 {
			location = "San Francisco, CA"
		}
		jobs = append(jobs, models.JobPosting{
			ID:          fmt.Sprintf("synthetic-%d", i+1),
			Title:       tmpl.Title,
			Company:     tmpl.Company,
			Location:    location,
			SalaryRange: tmpl.Salary,
			ApplyURL:    "https://www.linkedin.com/jobs/search/?keywords=" + url.QueryEscape(tmpl.Title),
			Description: fmt.Sprintf("Looking for an experienced %s professional with skills in %s.", strings.ToLower(query.Domain), skillText),
			Source:      p.Name(),
		})
	}
	return jobs, nil
}

type AdzunaConfig struct {
	BaseURL string
	AppID   string
	APIKey  string
	Country string
}

// AdzunaJobProvider queries the Adzuna search API.
type AdzunaJobProvider struct {
	cfg    AdzunaConfig
	client *http.Client
}

func NewAdzunaJobProvider(cfg AdzunaConfig, httpClient *http.Client) *AdzunaJobProvider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.adzuna.com/v1/api/jobs"
	}
	if strings.TrimSpace(cfg.Country) == "" {
		cfg.Country = "us"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AdzunaJobProvider{cfg: cfg, client: httpClient}
}

func (p *AdzunaJobProvider) Name() string { return "adzuna" }

type adzunaJob struct {
	ID          string  `mapstructure:"id"`
	Title       string  `mapstructure:"title"`
	Description string  `mapstructure:"description"`
	RedirectURL string  `mapstructure:"redirect_url"`
	SalaryMin   float64 `mapstructure:"salary_min"`
	SalaryMax   float64 `mapstructure:"salary_max"`
	Company     struct {
		DisplayName string `mapstructure:"display_name"`
	} `mapstructure:"company"`
	Location struct {
		DisplayName string `mapstructure:"display_name"`
	} `mapstructure:"location"`
}

func (p *AdzunaJobProvider) Fetch(ctx context.Context, query JobQuery) ([]models.JobPosting, error) {
	if p.cfg.AppID == "" || p.cfg.APIKey == "" {
		return nil, errors.New("adzuna credentials missing")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	what := query.Role
	if what == "" {
		what = query.Domain
	}

	params := url.Values{}
	params.Set("app_id", p.cfg.AppID)
	params.Set("app_key", p.cfg.APIKey)
	params.Set("results_per_page", strconv.Itoa(limit))
	params.Set("what", what)
	if len(query.Skills) > 0 {
		params.Set("what_or", strings.Join(firstN(query.Skills, 5), " "))
	}
	params.Set("content-type", "application/json")

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Country, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("adzuna http %d", resp.StatusCode)
	}

	var body struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode adzuna response: %w", err)
	}

	var raw []adzunaJob
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(body.Results); err != nil {
		return nil, fmt.Errorf("decode adzuna results: %w", err)
	}

	jobs := make([]models.JobPosting, 0, len(raw))
	for _, job := range raw {
		jobs = append(jobs, models.JobPosting{
			ID:          job.ID,
			Title:       strings.TrimSpace(job.Title),
			Company:     job.Company.DisplayName,
			Location:    job.Location.DisplayName,
			SalaryRange: formatSalary(job.SalaryMin, job.SalaryMax),
			ApplyURL:    job.RedirectURL,
			Description: job.Description,
			Source:      p.Name(),
		})
	}
	return jobs, nil
}

func formatSalary(minSalary, maxSalary float64) string {
	switch {
	case minSalary > 0 && maxSalary > 0:
		return fmt.Sprintf("$%.0fk-%.0fk", minSalary/1000, maxSalary/1000)
	case minSalary > 0:
		return fmt.Sprintf("from $%.0fk", minSalary/1000)
	default:
		return ""
	}
}

// VectorJobProvider searches job postings ingested into the knowledge base.
type VectorJobProvider struct {
	embedder Embedder
	kb       KnowledgeBase
}

func NewVectorJobProvider(embedder Embedder, kb KnowledgeBase) *VectorJobProvider {
	return &VectorJobProvider{embedder: embedder, kb: kb}
}

func (p *VectorJobProvider) Name() string { return "knowledge_base" }

func (p *VectorJobProvider) Fetch(ctx context.Context, query JobQuery) ([]models.JobPosting, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	text := fmt.Sprintf("%s %s role requiring %s", query.Domain, query.Role, strings.Join(query.Skills, ", "))
	embedding, err := p.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job query: %w", err)
	}

	results, err := p.kb.SearchSimilar(ctx, embedding, DocTypeJobPosting, limit)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.JobPosting, 0, len(results))
	for _, r := range results {
		var job models.JobPosting
		if err := mapstructure.Decode(r.Metadata, &job); err != nil {
			continue
		}
		if job.Title == "" {
			continue
		}
		if job.ID == "" {
			job.ID = r.ID
		}
		if job.Description == "" {
			job.Description = r.Text
		}
		job.Source = p.Name()
		jobs = append(jobs, job)
	}
	return jobs, nil
}
