package httpapp

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/gosimple/slug"

	"github.com/westeroschronicles/chronicle/internal/forest"
)

const feedSize = 20

// handleFeed serves an RSS feed of the newest chapters across the realm.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	f, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	newest := f.Select(forest.Query{Sort: forest.SortNewest})
	if len(newest) > feedSize {
		newest = newest[:feedSize]
	}

	updated := time.Now()
	if len(newest) > 0 {
		updated = newest[0].CreatedAt
	}
	feed := &feeds.Feed{
		Title:       "Westeros Chronicles",
		Link:        &feeds.Link{Href: s.cfg.BaseURL},
		Description: "New chapters from across the realm",
		Updated:     updated,
	}
	for _, story := range newest {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          story.ID,
			Title:       story.Title,
			Link:        &feeds.Link{Href: s.cfg.BaseURL + "/stories/" + story.ID + "/" + slug.Make(story.Title)},
			Author:      &feeds.Author{Name: story.AuthorUsername},
			Description: summarize(story.Content),
			Created:     story.CreatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}

// summarize truncates chapter text for feed readers.
func summarize(content string) string {
	const max = 280
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
