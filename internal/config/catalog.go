package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/mock-interview/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the static interview content: question banks per role, heuristic
// keyword lists, the dimension to domain taxonomy, job match weights and the
// post-interview guidance tables.
type Catalog struct {
	DefaultRole       string                   `yaml:"default_role"`
	SkillKeywords     []string                 `yaml:"skill_keywords"`
	Roles             []RoleTemplate           `yaml:"roles"`
	DimensionKeywords map[string][]string      `yaml:"dimension_keywords"`
	Domains           map[string]string        `yaml:"domains"`
	MatchWeights      MatchWeights             `yaml:"match_weights"`
	JobTemplates      map[string][]JobTemplate `yaml:"job_templates"`
	Guidance          GuidanceCatalog          `yaml:"guidance"`
}

type RoleTemplate struct {
	Name      string             `yaml:"name"`
	Aliases   []string           `yaml:"aliases"`
	Keywords  []string           `yaml:"keywords"`
	Questions []QuestionTemplate `yaml:"questions"`
}

// QuestionTemplate may contain a {skill} placeholder expanded from the resume.
type QuestionTemplate struct {
	Text      string `yaml:"text"`
	Dimension string `yaml:"dimension"`
}

type MatchWeights struct {
	Base             int `yaml:"base"`
	PerSkill         int `yaml:"per_skill"`
	ATSHighThreshold int `yaml:"ats_high_threshold"`
	ATSHighBonus     int `yaml:"ats_high_bonus"`
	ATSMidThreshold  int `yaml:"ats_mid_threshold"`
	ATSMidBonus      int `yaml:"ats_mid_bonus"`
	RemoteBonus      int `yaml:"remote_bonus"`
}

type JobTemplate struct {
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
	Salary  string `yaml:"salary"`
}

// GuidanceCatalog drives the preparation plan in the final report. Banded
// tables are keyed by the minimum average score they apply from.
type GuidanceCatalog struct {
	WeakBelow      float64                              `yaml:"weak_below"`
	StrongFrom     float64                              `yaml:"strong_from"`
	ActionPlans    []Band[ActionSteps]                  `yaml:"action_plans"`
	Resources      map[string][]models.LearningResource `yaml:"resources"`
	SystemDesign   []Band[models.SystemDesignTrack]     `yaml:"system_design"`
	MockInterviews []Band[models.MockInterviewPlan]     `yaml:"mock_interviews"`
	Roadmaps       []Band[models.Roadmap]               `yaml:"roadmaps"`
}

type ActionSteps struct {
	Steps []models.ActionItem `yaml:"steps"`
}

type Band[T any] struct {
	MinScore float64 `yaml:"min_score"`
	Value    T       `yaml:",inline"`
}

// BandFor returns the value of the highest band whose floor score reaches,
// or the zero value when no band applies. Bands are sorted by validate.
func BandFor[T any](bands []Band[T], score float64) T {
	for _, b := range bands {
		if score >= b.MinScore {
			return b.Value
		}
	}
	var zero T
	return zero
}

// ResourcesFor returns the learning resources listed for d.
func (c *Catalog) ResourcesFor(d models.Dimension) []models.LearningResource {
	return c.Guidance.Resources[d.Key()]
}

// LoadCatalog reads the catalog at path, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		data = raw
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the embedded catalog. It panics if the embedded file is invalid.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Roles) == 0 {
		return errors.New("catalog: at least one role is required")
	}
	if c.DefaultRole == "" {
		c.DefaultRole = c.Roles[0].Name
	}
	if _, ok := c.findRole(c.DefaultRole); !ok {
		return fmt.Errorf("catalog: default role %q is not defined", c.DefaultRole)
	}

	for _, role := range c.Roles {
		for _, q := range role.Questions {
			if _, ok := models.ParseDimension(q.Dimension); !ok {
				return fmt.Errorf("catalog: role %q has question with unknown dimension %q", role.Name, q.Dimension)
			}
		}
	}

	for _, d := range models.Dimensions() {
		if strings.TrimSpace(c.Domains[d.Key()]) == "" {
			return fmt.Errorf("catalog: no domain mapped for dimension %q", d)
		}
	}

	return c.Guidance.normalize()
}

func (g *GuidanceCatalog) normalize() error {
	if g.WeakBelow == 0 {
		g.WeakBelow = 70
	}
	if g.StrongFrom == 0 {
		g.StrongFrom = 80
	}
	if g.WeakBelow > g.StrongFrom {
		return fmt.Errorf("catalog: guidance weak_below %.0f is above strong_from %.0f", g.WeakBelow, g.StrongFrom)
	}

	resources := make(map[string][]models.LearningResource, len(g.Resources))
	for key, items := range g.Resources {
		d, ok := models.ParseDimension(key)
		if !ok {
			return fmt.Errorf("catalog: guidance resources for unknown dimension %q", key)
		}
		resources[d.Key()] = items
	}
	g.Resources = resources

	sortBands(g.ActionPlans)
	sortBands(g.SystemDesign)
	sortBands(g.MockInterviews)
	sortBands(g.Roadmaps)
	return nil
}

func sortBands[T any](bands []Band[T]) {
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].MinScore > bands[j].MinScore
	})
}

func (c *Catalog) findRole(name string) (RoleTemplate, bool) {
	for _, role := range c.Roles {
		if strings.EqualFold(role.Name, strings.TrimSpace(name)) {
			return role, true
		}
	}
	return RoleTemplate{}, false
}

// Role resolves a free-form role title to a catalog entry. Exact names win,
// then aliases of specific roles, then the default role.
func (c *Catalog) Role(name string) RoleTemplate {
	if role, ok := c.findRole(name); ok {
		return role
	}

	lowered := strings.ToLower(name)
	for _, role := range c.Roles {
		if strings.EqualFold(role.Name, c.DefaultRole) {
			continue
		}
		for _, alias := range role.Aliases {
			if alias != "" && strings.Contains(lowered, strings.ToLower(alias)) {
				return role
			}
		}
	}

	role, _ := c.findRole(c.DefaultRole)
	return role
}

func (c *Catalog) KeywordsFor(d models.Dimension) []string {
	return c.DimensionKeywords[d.Key()]
}

func (c *Catalog) DomainFor(d models.Dimension) string {
	return c.Domains[d.Key()]
}

// JobTemplatesFor returns the templates for domain, or those of the first
// dimension's domain when the domain has none.
func (c *Catalog) JobTemplatesFor(domain string) []JobTemplate {
	if templates, ok := c.JobTemplates[domain]; ok && len(templates) > 0 {
		return templates
	}
	return c.JobTemplates[c.DomainFor(models.DimensionTechnicalMastery)]
}
