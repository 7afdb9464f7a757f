// Package models defines core data structures for content items, queries, and search results.
package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// ContentType is the kind of a content item (article, job, page, ...).
// The set of valid types is closed and comes from configuration.
type ContentType string

// ContentTypeAll is the synthetic facet type that counts every match.
const ContentTypeAll ContentType = "all"

// ContentItem is one searchable document. Items are read-only snapshots for
// the duration of a search request.
type ContentItem struct {
	ID              string      `json:"id" db:"id"`
	Type            ContentType `json:"type" db:"type"`
	Title           string      `json:"title" db:"title"`
	Body            string      `json:"body" db:"body"`
	ExcerptOverride string      `json:"excerpt_override,omitempty" db:"excerpt_override"`
	PublishedAt     time.Time   `json:"published_at" db:"published_at"`
	ModifiedAt      time.Time   `json:"modified_at" db:"modified_at"`
	Categories      []string    `json:"categories,omitempty" db:"categories"`
	AuthorID        string      `json:"author_id,omitempty" db:"author_id"`
	CommentCount    int         `json:"comment_count" db:"comment_count"`
	ViewCount       int         `json:"view_count" db:"view_count"`
}

// CategorySlugs returns the URL slugs of the item's category labels, without duplicates.
func (c *ContentItem) CategorySlugs() []string {
	out := make([]string, 0, len(c.Categories))
	seen := make(map[string]struct{}, len(c.Categories))
	for _, label := range c.Categories {
		s := CategorySlug(label)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// HasCategory reports whether any of the item's categories slugifies to categorySlug.
func (c *ContentItem) HasCategory(categorySlug string) bool {
	for _, s := range c.CategorySlugs() {
		if s == categorySlug {
			return true
		}
	}
	return false
}

// CategorySlug converts a category label to its URL slug ("Remote Work" -> "remote-work").
func CategorySlug(label string) string {
	return slug.Make(strings.TrimSpace(label))
}

// ContentItemInput is the input for creating or replacing a content item.
type ContentItemInput struct {
	ID              string      `json:"id,omitempty" yaml:"id"`
	Type            ContentType `json:"type" yaml:"type"`
	Title           string      `json:"title" yaml:"title"`
	Body            string      `json:"body" yaml:"-"`
	ExcerptOverride string      `json:"excerpt,omitempty" yaml:"excerpt"`
	PublishedAt     time.Time   `json:"published_at,omitempty" yaml:"published_at"`
	ModifiedAt      time.Time   `json:"modified_at,omitempty" yaml:"modified_at"`
	Categories      []string    `json:"categories,omitempty" yaml:"categories"`
	AuthorID        string      `json:"author_id,omitempty" yaml:"author_id"`
	CommentCount    int         `json:"comment_count,omitempty" yaml:"comment_count"`
	ViewCount       int         `json:"view_count,omitempty" yaml:"view_count"`
}

// Item converts the input into a ContentItem. A zero PublishedAt becomes now,
// and ModifiedAt is never earlier than PublishedAt. Negative counters are clamped to zero.
func (in *ContentItemInput) Item(now time.Time) *ContentItem {
	published := in.PublishedAt
	if published.IsZero() {
		published = now
	}
	modified := in.ModifiedAt
	if modified.Before(published) {
		modified = published
	}
	cats := make([]string, 0, len(in.Categories))
	for _, c := range in.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	return &ContentItem{
		ID:              in.ID,
		Type:            ContentType(strings.ToLower(strings.TrimSpace(string(in.Type)))),
		Title:           strings.TrimSpace(in.Title),
		Body:            in.Body,
		ExcerptOverride: strings.TrimSpace(in.ExcerptOverride),
		PublishedAt:     published.UTC(),
		ModifiedAt:      modified.UTC(),
		Categories:      cats,
		AuthorID:        in.AuthorID,
		CommentCount:    max(in.CommentCount, 0),
		ViewCount:       max(in.ViewCount, 0),
	}
}
