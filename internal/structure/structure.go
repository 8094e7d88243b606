// Package structure locates nodes inside a decoded notebook structure.
//
// All searches are depth-first and pure: a container is checked itself,
// then its items, then its sub-notebooks in listed order. When identifiers
// are duplicated (historical corruption) the first match wins.
package structure

import (
	"strings"

	"github.com/pders01/git-notebook/internal/models"
)

// Find returns the item or container with the given identifier.
func Find(s *models.Structure, id string) (models.Node, bool) {
	if s == nil || id == "" {
		return models.Node{}, false
	}
	for i := range s.Roots {
		if n, ok := FindIn(&s.Roots[i], id); ok {
			return n, true
		}
	}
	return models.Node{}, false
}

// FindIn searches the subtree rooted at c.
func FindIn(c *models.Container, id string) (models.Node, bool) {
	if c.ID == id {
		return models.ContainerNode(c), true
	}
	for i := range c.Notes {
		if c.Notes[i].ID == id {
			return models.ItemNode(&c.Notes[i]), true
		}
	}
	for i := range c.Subnotebooks {
		if n, ok := FindIn(&c.Subnotebooks[i], id); ok {
			return n, true
		}
	}
	return models.Node{}, false
}

// ParentOf returns the container whose items list contains id.
func ParentOf(s *models.Structure, id string) (*models.Container, bool) {
	if s == nil || id == "" {
		return nil, false
	}
	var found *models.Container
	for i := range s.Roots {
		Walk(&s.Roots[i], func(c *models.Container) bool {
			for _, item := range c.Notes {
				if item.ID == id {
					found = c
					return false
				}
			}
			return true
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

// Walk visits c and every descendant container depth-first until fn
// returns false. It reports whether the walk ran to completion.
func Walk(c *models.Container, fn func(*models.Container) bool) bool {
	if !fn(c) {
		return false
	}
	for i := range c.Subnotebooks {
		if !Walk(&c.Subnotebooks[i], fn) {
			return false
		}
	}
	return true
}

// Match restricts name lookups to a class of nodes
type Match int

const (
	MatchAny Match = iota
	MatchItems
	MatchContainers
)

// FindIDByName returns the identifier of the first item titled name or
// sub-notebook called name, compared case-insensitively.
func FindIDByName(s *models.Structure, name string) (string, bool) {
	return FindIDByNameKind(s, name, MatchAny)
}

// FindIDByNameKind is FindIDByName restricted to items or containers.
// Root notebook names are never candidates.
func FindIDByNameKind(s *models.Structure, name string, match Match) (string, bool) {
	if s == nil || strings.TrimSpace(name) == "" {
		return "", false
	}
	for i := range s.Roots {
		if id, ok := findName(&s.Roots[i], name, match); ok {
			return id, true
		}
	}
	return "", false
}

func findName(c *models.Container, name string, match Match) (string, bool) {
	if match != MatchContainers {
		for _, item := range c.Notes {
			if strings.EqualFold(item.Title, name) {
				return item.ID, true
			}
		}
	}
	for i := range c.Subnotebooks {
		sub := &c.Subnotebooks[i]
		if match != MatchItems && strings.EqualFold(sub.Name, name) {
			return sub.ID, true
		}
		if id, ok := findName(sub, name, match); ok {
			return id, true
		}
	}
	return "", false
}

// CollectContent copies the content of every item in the subtree rooted at
// c out of the full maps into two maps restricted to that subtree. Each
// item is looked up in the map matching its type tag first, then in the
// other one, so content filed under the wrong map is still recovered.
func CollectContent(c *models.Container, notes, files models.ContentMap) (models.ContentMap, models.ContentMap) {
	outNotes := models.ContentMap{}
	outFiles := models.ContentMap{}
	Walk(c, func(nb *models.Container) bool {
		for _, item := range nb.Notes {
			primary, secondary := notes, files
			primaryOut, secondaryOut := outNotes, outFiles
			if item.IsFile() {
				primary, secondary = files, notes
				primaryOut, secondaryOut = outFiles, outNotes
			}
			if text, ok := primary[item.ID]; ok {
				primaryOut[item.ID] = text
			} else if text, ok := secondary[item.ID]; ok {
				secondaryOut[item.ID] = text
			}
		}
		return true
	})
	return outNotes, outFiles
}

// Items returns every item in the subtree rooted at c in depth-first order.
func Items(c *models.Container) []models.Item {
	var items []models.Item
	Walk(c, func(nb *models.Container) bool {
		items = append(items, nb.Notes...)
		return true
	})
	return items
}

// IDs returns the identifiers of c and everything below it.
func IDs(c *models.Container) map[string]bool {
	ids := map[string]bool{}
	Walk(c, func(nb *models.Container) bool {
		ids[nb.ID] = true
		for _, item := range nb.Notes {
			ids[item.ID] = true
		}
		return true
	})
	return ids
}
