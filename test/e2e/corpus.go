// Package e2e provides end-to-end tests with a generated content corpus and multiple queries.
package e2e

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/shirabe/internal/models"
)

// E2EItem is a content entry in the E2E corpus.
type E2EItem struct {
	ID          string
	Type        models.ContentType
	Title       string
	Body        string
	Category    string
	PublishedAt time.Time
}

// QueryTestCase defines a query and the item ID(s) that must appear in search results.
type QueryTestCase struct {
	Query       string
	ExpectedIDs []string
	Description string
}

// Corpus holds items and query test cases for E2E tests.
type Corpus struct {
	Items        []E2EItem
	TestCases    []QueryTestCase
	TotalItems   int
	TotalQueries int
}

// corpusTypes is the type rotation; it matches the default configured content types.
var corpusTypes = []models.ContentType{"article", "job", "page"}

var corpusCategories = []string{"Engineering", "Careers", "Guides", "Company News"}

// BuildCorpus returns a corpus of n items spread over the default content types and a fixed
// set of categories. Each item carries a signature phrase so queries can assert it is returned.
func BuildCorpus(n int) *Corpus {
	items := buildItems(n)
	cases := buildQueryTestCases(items)
	return &Corpus{
		Items:        items,
		TestCases:    cases,
		TotalItems:   len(items),
		TotalQueries: len(cases),
	}
}

var topics = []struct {
	title  string
	phrase string
	body   string
}{
	{"Python Guide", "python programming", "Python is a high-level language. Python programming is used for web development and data science."},
	{"Kubernetes Docs", "kubernetes orchestration", "Kubernetes is an open-source platform. Kubernetes orchestration automates deployment and scaling."},
	{"React Tutorial", "react hooks", "React is a JavaScript library. React hooks and components build user interfaces."},
	{"Go Language", "golang goroutines", "Go is a statically typed language. Golang goroutines and channels make concurrency simple."},
	{"PostgreSQL Manual", "postgresql relational", "PostgreSQL is an advanced database. PostgreSQL relational storage supports JSON and full-text search."},
	{"Docker Handbook", "docker images", "Docker ships applications. Docker images are portable across environments."},
	{"Remote Backend Engineer", "backend engineer", "We are hiring a backend engineer to work fully remote on our search platform."},
	{"Senior Designer", "product designer", "Join us as a product designer shaping the onboarding experience."},
	{"REST API Design", "rest endpoints", "REST is an architectural style. REST endpoints use HTTP methods and status codes."},
	{"GraphQL Overview", "graphql schema", "GraphQL is a query language for APIs. A GraphQL schema describes what clients can request."},
	{"TypeScript Handbook", "typescript generics", "TypeScript adds static types to JavaScript. TypeScript generics catch errors at compile time."},
	{"Redis Cache", "redis sessions", "Redis is an in-memory data store. Redis sessions keep login state fast."},
	{"Data Analyst Opening", "data analyst", "The analytics team is looking for a data analyst who enjoys dashboards."},
	{"Terraform Basics", "terraform modules", "Terraform manages cloud infrastructure. Terraform modules keep configuration declarative."},
	{"Prometheus Metrics", "prometheus alerting", "Prometheus is a monitoring system. Prometheus alerting fires on time-series rules."},
	{"About Us", "company history", "Our company history started in a small garage with three founders."},
	{"OAuth Explained", "oauth authorization", "OAuth is an authorization framework. OAuth authorization enables delegated access."},
	{"Support Engineer Role", "support engineer", "We need a support engineer to help customers in the Asia time zones."},
	{"Git Workflow", "git rebase", "Git is a distributed version control system. Git rebase keeps history linear."},
	{"SQL Basics", "sql joins", "SQL manages relational data. SQL joins combine rows from several tables."},
	{"Contact Page", "office address", "Visit us at our office address in the city centre or send an email."},
	{"Kafka Streams", "kafka partitions", "Apache Kafka is an event streaming platform. Kafka partitions spread load across brokers."},
	{"Nginx Config", "nginx proxy", "Nginx is a web server. An nginx proxy balances load and serves static files."},
	{"Privacy Policy", "privacy policy", "This privacy policy explains which personal data we collect and why."},
	{"Frontend Developer", "frontend developer", "Our web team is hiring a frontend developer with accessibility experience."},
	{"Caching Strategies", "cache invalidation", "Caching improves performance. Cache invalidation must be designed carefully."},
	{"Event Sourcing", "event sourcing", "Event sourcing stores state as a series of events instead of snapshots."},
	{"Unit Testing", "table tests", "Unit tests verify small pieces of code. Table tests keep cases readable."},
	{"Terms of Service", "service terms", "These service terms govern your use of the website."},
	{"Site Reliability Engineer", "reliability engineer", "Become a reliability engineer and own our on-call tooling."},
	{"Graceful Shutdown", "graceful shutdown", "Graceful shutdown drains connections before the process exits."},
	{"Health Checks", "liveness probes", "Health checks indicate readiness. Liveness probes restart stuck containers."},
	{"Careers FAQ", "hiring process", "Our hiring process has three interviews and a short take-home task."},
	{"Rate Limiting", "token bucket", "Rate limiting protects APIs. A token bucket allows short bursts."},
	{"Feature Flags", "feature flags", "Feature flags toggle functionality and allow gradual rollout."},
	{"Mobile Engineer", "mobile engineer", "We are looking for a mobile engineer to build our native apps."},
	{"Accessibility", "wcag guidelines", "Accessibility ensures inclusive design. The wcag guidelines set the baseline."},
	{"Press Kit", "press kit", "Download our press kit with logos, screenshots and founder photos."},
	{"Observability", "distributed tracing", "Observability covers metrics and logs. Distributed tracing follows requests across services."},
	{"Security Analyst", "security analyst", "The platform team is hiring a security analyst to run audits."},
}

func buildItems(n int) []E2EItem {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]E2EItem, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		title := t.title
		if i >= len(topics) {
			title = fmt.Sprintf("%s (%d)", t.title, i+1)
		}
		out = append(out, E2EItem{
			ID:          fmt.Sprintf("e2e-item-%03d", i+1),
			Type:        corpusTypes[i%len(corpusTypes)],
			Title:       title,
			Body:        t.body,
			Category:    corpusCategories[i%len(corpusCategories)],
			PublishedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return out
}

// buildQueryTestCases targets each topic phrase at the first item containing it.
func buildQueryTestCases(items []E2EItem) []QueryTestCase {
	var cases []QueryTestCase
	used := make(map[string]bool)
	for _, t := range topics {
		for _, it := range items {
			if containsPhrase(it, t.phrase) && !used[it.ID] {
				cases = append(cases, QueryTestCase{
					Query:       t.phrase,
					ExpectedIDs: []string{it.ID},
					Description: fmt.Sprintf("query %q should return %s", t.phrase, it.ID),
				})
				used[it.ID] = true
				break
			}
		}
	}
	return cases
}

func containsPhrase(it E2EItem, phrase string) bool {
	phrase = strings.ToLower(phrase)
	return strings.Contains(strings.ToLower(it.Title), phrase) || strings.Contains(strings.ToLower(it.Body), phrase)
}

// ToItemInputs converts the corpus items to models.ContentItemInput for indexing.
func (c *Corpus) ToItemInputs() []*models.ContentItemInput {
	out := make([]*models.ContentItemInput, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		out[i] = &models.ContentItemInput{
			ID:          it.ID,
			Type:        it.Type,
			Title:       it.Title,
			Body:        it.Body,
			Categories:  []string{it.Category},
			PublishedAt: it.PublishedAt,
		}
	}
	return out
}

// Markdown renders it as a content file with YAML front matter.
func (it E2EItem) Markdown() string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %s\n", it.ID)
	fmt.Fprintf(&b, "type: %s\n", it.Type)
	fmt.Fprintf(&b, "title: %q\n", it.Title)
	fmt.Fprintf(&b, "published_at: %s\n", it.PublishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "categories:\n  - %s\n", it.Category)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "# %s\n\n%s\n", it.Title, it.Body)
	return b.String()
}
