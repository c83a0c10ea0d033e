// Package forest answers structural questions about the story collection:
// thread roots, branches, descendant counts and depth-annotated tree views.
// A Forest is a read-only snapshot; callers rebuild it after mutations.
//
// Parent links come from user data, so every walk is bounded by a visited
// set. A dangling or cyclic parent chain degrades to the last node that
// resolved cleanly instead of looping or failing.
package forest

import (
	"sort"
	"strings"
	"time"

	"github.com/westeroschronicles/chronicle/internal/model"
)

type Forest struct {
	stories []model.Story
	byID    map[string]int
	// children holds indexes into stories, keyed by parent id,
	// in collection order.
	children map[string][]int
}

// TreeEntry is one row of a depth-first tree view.
type TreeEntry struct {
	Story model.Story `json:"story"`
	Depth int         `json:"depth"`
}

// New builds a snapshot over stories in collection order.
func New(stories []model.Story) *Forest {
	f := &Forest{
		stories:  stories,
		byID:     make(map[string]int, len(stories)),
		children: make(map[string][]int),
	}
	for i, s := range stories {
		f.byID[s.ID] = i
	}
	for i, s := range stories {
		if s.ParentID != "" {
			f.children[s.ParentID] = append(f.children[s.ParentID], i)
		}
	}
	return f
}

func (f *Forest) Len() int {
	return len(f.stories)
}

// Stories returns the snapshot in collection order.
func (f *Forest) Stories() []model.Story {
	return f.stories
}

// FindByID looks a story up by id. A miss is a normal outcome, not an error.
func (f *Forest) FindByID(id string) (model.Story, bool) {
	i, ok := f.byID[id]
	if !ok {
		return model.Story{}, false
	}
	return f.stories[i], true
}

// ChildrenOf returns the direct continuations of id in collection order.
func (f *Forest) ChildrenOf(id string) []model.Story {
	idxs := f.children[id]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]model.Story, len(idxs))
	for i, idx := range idxs {
		out[i] = f.stories[idx]
	}
	return out
}

// RootOf walks parent links upward to the thread root. The walk stops at a
// story with no parent, at a parent that cannot be found, or when a node
// repeats; the last story that resolved is returned.
func (f *Forest) RootOf(story model.Story) model.Story {
	current := story
	seen := map[string]bool{current.ID: true}
	for current.ParentID != "" {
		parent, ok := f.FindByID(current.ParentID)
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		current = parent
	}
	return current
}

// IsRoot reports whether the story starts its own thread.
func (f *Forest) IsRoot(story model.Story) bool {
	return f.RootOf(story).ID == story.ID
}

// DescendantCount counts the stories transitively reachable from id through
// child links, each at most once.
func (f *Forest) DescendantCount(id string) int {
	if _, ok := f.byID[id]; !ok {
		return 0
	}
	seen := map[string]bool{id: true}
	stack := append([]int(nil), f.children[id]...)
	count := 0
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := f.stories[idx]
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		count++
		stack = append(stack, f.children[s.ID]...)
	}
	return count
}

// TreeView returns the whole thread containing id as a depth-first pre-order
// listing starting at the thread root, each entry annotated with its nesting
// depth. Unknown ids yield an empty view.
func (f *Forest) TreeView(id string) []TreeEntry {
	story, ok := f.FindByID(id)
	if !ok {
		return nil
	}
	root := f.RootOf(story)

	type frame struct {
		idx   int
		depth int
	}
	rootIdx := f.byID[root.ID]
	stack := []frame{{rootIdx, 0}}
	seen := make(map[string]bool)
	var view []TreeEntry
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := f.stories[fr.idx]
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		view = append(view, TreeEntry{Story: s, Depth: fr.depth})
		// Push children in reverse so the view keeps collection order.
		kids := f.children[s.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{kids[i], fr.depth + 1})
		}
	}
	return view
}

// RegionCounts tallies chapters per region for the realm map. Every known
// region is present in the result, zero or not.
func (f *Forest) RegionCounts() map[string]int {
	counts := make(map[string]int, len(model.Regions))
	for _, r := range model.Regions {
		counts[r] = 0
	}
	for _, s := range f.stories {
		if _, ok := counts[s.Region]; ok {
			counts[s.Region]++
		}
	}
	return counts
}

// AuthoredBy filters the snapshot to one author, by stable id.
func (f *Forest) AuthoredBy(authorID string) []model.Story {
	var out []model.Story
	for _, s := range f.stories {
		if s.AuthorID == authorID {
			out = append(out, s)
		}
	}
	return out
}

// Sort orders for Select.
const (
	SortNewest   = "newest"
	SortTop      = "top"
	SortBranched = "branched"
)

// Query filters and orders a snapshot for the story list.
type Query struct {
	Search string
	Region string
	Sort   string
}

// Select applies a query. Search matches title, author, region or content,
// case-insensitively. The zero Query returns everything newest-first.
func (f *Forest) Select(q Query) []model.Story {
	out := make([]model.Story, 0, len(f.stories))
	term := strings.ToLower(q.Search)
	for _, s := range f.stories {
		if q.Region != "" && s.Region != q.Region {
			continue
		}
		if term != "" && !matches(s, term) {
			continue
		}
		out = append(out, s)
	}
	switch q.Sort {
	case SortTop:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score() > out[j].Score()
		})
	case SortBranched:
		sort.SliceStable(out, func(i, j int) bool {
			return len(f.children[out[i].ID]) > len(f.children[out[j].ID])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

func matches(s model.Story, term string) bool {
	return strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.AuthorUsername), term) ||
		strings.Contains(strings.ToLower(s.Region), term) ||
		strings.Contains(strings.ToLower(s.Content), term)
}

// HotRank scales score by age so fresh threads surface: score divided by age
// in days, with a one-day floor.
func HotRank(score int, createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	if days < 1 {
		days = 1
	}
	return float64(score) / days
}
