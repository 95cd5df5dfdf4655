package services

import (
	"github.com/intranet-suite/survey-service/internal/models"
)

// CategoryFilterAll selects the flattened question order across every category.
const CategoryFilterAll = "all"

// CategoryChangeFunc is invoked whenever the category of the current question
// changes, either by crossing a boundary in the flattened order or by an
// explicit filter change.
type CategoryChangeFunc func(category *models.Category)

// Navigator walks the ordered questions of one subsection. Under the "all"
// filter the sequence is the flattened category-by-category order; under a
// specific category filter, navigation shows one category at a time and
// crossing its edge advances the filter to the adjacent category. The
// category of the current question is always derived from the question
// itself, never tracked separately, so the two can not drift apart.
type Navigator struct {
	categories map[string]*models.Category
	ordered    []*models.Category
	byCategory map[string][]*models.Question
	flattened  []*models.Question

	filter   string
	position int

	onCategoryChange CategoryChangeFunc
}

// NewNavigator builds a navigator over the given catalog. Questions whose
// category can not be resolved are excluded from navigation entirely; they
// can not be answered either, so hiding them keeps the two views consistent.
func NewNavigator(categories []*models.Category, questions []*models.Question) *Navigator {
	n := &Navigator{
		categories: make(map[string]*models.Category, len(categories)),
		byCategory: make(map[string][]*models.Question),
		filter:     CategoryFilterAll,
	}

	for _, category := range categories {
		n.categories[category.ID] = category
	}
	for _, question := range questions {
		if question.CategoryID == nil {
			continue
		}
		if _, ok := n.categories[*question.CategoryID]; !ok {
			continue
		}
		n.byCategory[*question.CategoryID] = append(n.byCategory[*question.CategoryID], question)
	}

	// Only categories that actually hold questions take part in the flattened
	// order; empty ones would produce positions with no current question.
	for _, category := range categories {
		group := n.byCategory[category.ID]
		if len(group) == 0 {
			continue
		}
		n.ordered = append(n.ordered, category)
		n.flattened = append(n.flattened, group...)
	}

	return n
}

// OnCategoryChange registers the callback fired on derived-category changes.
func (n *Navigator) OnCategoryChange(fn CategoryChangeFunc) {
	n.onCategoryChange = fn
}

func (n *Navigator) active() []*models.Question {
	if n.filter == CategoryFilterAll {
		return n.flattened
	}
	return n.byCategory[n.filter]
}

// Current returns the question at the navigator position, or nil when the
// active sequence is empty.
func (n *Navigator) Current() *models.Question {
	active := n.active()
	if n.position < 0 || n.position >= len(active) {
		return nil
	}
	return active[n.position]
}

// CurrentCategory derives the category from the current question.
func (n *Navigator) CurrentCategory() *models.Category {
	current := n.Current()
	if current == nil || current.CategoryID == nil {
		return nil
	}
	return n.categories[*current.CategoryID]
}

// Next advances one question and reports whether the position moved. Under a
// specific filter, stepping past the category's last question moves the
// filter to the next category's first question. On the globally last
// question it is a no-op.
func (n *Navigator) Next() bool {
	if n.position+1 < len(n.active()) {
		before := n.CurrentCategory()
		n.position++
		n.notifyIfCategoryChanged(before)
		return true
	}
	if n.filter == CategoryFilterAll {
		return false
	}

	next, ok := n.adjacentCategory(1)
	if !ok {
		return false
	}
	before := n.CurrentCategory()
	n.filter = next.ID
	n.position = 0
	n.notifyIfCategoryChanged(before)
	return true
}

// Previous steps one question back, jumping to the previous category's last
// question when a specific filter sits on its first. On the globally first
// question it is a no-op.
func (n *Navigator) Previous() bool {
	if n.position > 0 {
		before := n.CurrentCategory()
		n.position--
		n.notifyIfCategoryChanged(before)
		return true
	}
	if n.filter == CategoryFilterAll || len(n.active()) == 0 {
		return false
	}

	prev, ok := n.adjacentCategory(-1)
	if !ok {
		return false
	}
	before := n.CurrentCategory()
	n.filter = prev.ID
	n.position = len(n.byCategory[prev.ID]) - 1
	n.notifyIfCategoryChanged(before)
	return true
}

// adjacentCategory returns the navigable category delta steps away from the
// active filter's category.
func (n *Navigator) adjacentCategory(delta int) (*models.Category, bool) {
	for i, category := range n.ordered {
		if category.ID == n.filter {
			j := i + delta
			if j >= 0 && j < len(n.ordered) {
				return n.ordered[j], true
			}
			return nil, false
		}
	}
	return nil, false
}

// SetFilter restricts navigation to one category, or restores the flattened
// order with CategoryFilterAll. The position always resets to the first
// question of the new sequence.
func (n *Navigator) SetFilter(filter string) error {
	if filter != CategoryFilterAll {
		if _, ok := n.categories[filter]; !ok {
			return ErrUnknownFilter
		}
	}

	before := n.CurrentCategory()
	n.filter = filter
	n.position = 0
	n.notifyIfCategoryChanged(before)
	return nil
}

func (n *Navigator) notifyIfCategoryChanged(before *models.Category) {
	if n.onCategoryChange == nil {
		return
	}
	after := n.CurrentCategory()
	if after == nil {
		return
	}
	if before == nil || before.ID != after.ID {
		n.onCategoryChange(after)
	}
}

// Filter returns the active category filter.
func (n *Navigator) Filter() string {
	return n.filter
}

// Position returns the zero-based index within the active sequence and the
// sequence length.
func (n *Navigator) Position() (int, int) {
	return n.position, len(n.active())
}

// IsFirst reports whether the navigator sits on the globally first reachable
// question.
func (n *Navigator) IsFirst() bool {
	if n.position != 0 {
		return false
	}
	if n.filter == CategoryFilterAll {
		return true
	}
	_, ok := n.adjacentCategory(-1)
	return !ok
}

// IsLast reports whether the navigator sits on the last reachable question.
// Submission is only offered here.
func (n *Navigator) IsLast() bool {
	active := n.active()
	if len(active) == 0 || n.position != len(active)-1 {
		return false
	}
	if n.filter == CategoryFilterAll {
		return true
	}
	_, ok := n.adjacentCategory(1)
	return !ok
}

// Categories returns the categories that participate in navigation, in order.
func (n *Navigator) Categories() []*models.Category {
	return n.ordered
}
