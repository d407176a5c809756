package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/client/news"
	"github.com/bchung1201/PolyMaster/internal/models"
	"github.com/bchung1201/PolyMaster/internal/repository"
)

const newsRetention = 24 * time.Hour

type headlineFetcher interface {
	TopHeadlines(ctx context.Context, newsCategory string) ([]news.Article, error)
}

// NewsService keeps a per-category snapshot of recent headlines. The
// snapshot feeds forecast context and the news API; a failed refresh
// degrades that category to no context rather than stale context.
type NewsService struct {
	Client headlineFetcher
	Repo   repository.Repository
	Logger *zap.Logger

	mu        sync.RWMutex
	snapshots map[category.Tag][]news.Article
}

// Refresh re-fetches headlines for every market category. Categories that
// share an upstream news section are fetched once and fanned out.
func (s *NewsService) Refresh(ctx context.Context) {
	if s == nil || s.Client == nil {
		return
	}
	tagsBySection := make(map[string][]category.Tag)
	for _, tag := range category.All() {
		if tag == category.Other {
			continue
		}
		section := news.CategoryFor(tag)
		tagsBySection[section] = append(tagsBySection[section], tag)
	}

	now := time.Now().UTC()
	var records []models.NewsArticleRecord
	for section, tags := range tagsBySection {
		articles, err := s.Client.TopHeadlines(ctx, section)
		if err != nil {
			s.logger().Warn("headline refresh failed",
				zap.String("section", section), zap.Error(err))
			for _, tag := range tags {
				s.setSnapshot(tag, nil)
			}
			continue
		}
		for _, tag := range tags {
			s.setSnapshot(tag, articles)
			for _, a := range articles {
				if a.URL == "" {
					continue
				}
				records = append(records, models.NewsArticleRecord{
					Category:    string(tag),
					URL:         a.URL,
					Source:      a.Source,
					Title:       a.Title,
					Description: a.Description,
					PublishedAt: a.PublishedAt,
					FetchedAt:   now,
				})
			}
		}
	}
	s.persist(ctx, records, now)
}

func (s *NewsService) persist(ctx context.Context, records []models.NewsArticleRecord, now time.Time) {
	if s.Repo == nil {
		return
	}
	if err := s.Repo.UpsertNewsArticles(ctx, records); err != nil {
		s.logger().Warn("persist headlines failed", zap.Error(err))
	}
	if _, err := s.Repo.DeleteStaleNewsArticles(ctx, now.Add(-newsRetention)); err != nil {
		s.logger().Warn("prune headlines failed", zap.Error(err))
	}
}

// Headlines returns the snapshot titles for one category, for use as
// forecast context.
func (s *NewsService) Headlines(tag category.Tag) []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	articles := s.snapshots[tag]
	if len(articles) == 0 {
		return nil
	}
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		out = append(out, a.Title)
	}
	return out
}

// Articles returns the full snapshot for one category.
func (s *NewsService) Articles(tag category.Tag) []news.Article {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]news.Article(nil), s.snapshots[tag]...)
}

func (s *NewsService) setSnapshot(tag category.Tag, articles []news.Article) {
	s.mu.Lock()
	if s.snapshots == nil {
		s.snapshots = make(map[category.Tag][]news.Article)
	}
	s.snapshots[tag] = articles
	s.mu.Unlock()
}

func (s *NewsService) logger() *zap.Logger {
	if s != nil && s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
