// Package content supplies short motivational lines for the feed boost
// surface. Providers are pluggable behind the Generator interface; the
// built-in provider draws from canned per-category tables.
package content

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Category selects the tone of a generated line.
type Category string

const (
	CategoryGoalTip    Category = "goal_tip"
	CategoryStudyBoost Category = "study_boost"
	CategoryHype       Category = "hype"
)

// Generator produces one feed line for a category.
type Generator interface {
	Generate(ctx context.Context, category Category) (string, error)
}

// CannedProvider serves lines from fixed in-memory tables. Selection is
// uniform random per call.
type CannedProvider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	tables map[Category][]string
}

// NewCannedProvider creates a provider over the given tables, seeded for
// reproducibility in tests.
func NewCannedProvider(seed int64, tables map[Category][]string) *CannedProvider {
	return &CannedProvider{
		rng:    rand.New(rand.NewSource(seed)),
		tables: tables,
	}
}

// Generate returns a random line from the category's table.
func (p *CannedProvider) Generate(_ context.Context, category Category) (string, error) {
	lines, ok := p.tables[category]
	if !ok || len(lines) == 0 {
		return "", fmt.Errorf("no content for category %q", category)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return lines[p.rng.Intn(len(lines))], nil
}

// Categories returns the categories the provider can serve.
func (p *CannedProvider) Categories() []Category {
	return []Category{CategoryGoalTip, CategoryStudyBoost, CategoryHype}
}

// DefaultProvider returns the built-in line tables.
func DefaultProvider(seed int64) *CannedProvider {
	return NewCannedProvider(seed, map[Category][]string{
		CategoryGoalTip: {
			"Break the big goal into a 15-minute first step and do just that step.",
			"Write tomorrow's top task tonight so you start with zero decisions.",
			"Track the streak, not the outcome. Showing up is the win today.",
			"One goal at a time levels faster than five at once.",
		},
		CategoryStudyBoost: {
			"25 minutes on, 5 minutes off. Your focus regen is real, use it.",
			"Teach the concept to your notes app. If you can explain it, you own it.",
			"Hardest subject first, while the HP bar is full.",
			"Flashcards before bed stick better than an extra hour of rereading.",
		},
		CategoryHype: {
			"Yesterday's you would be hyped about today's you. Keep going.",
			"Every XP point you banked this week compounds. That's the whole trick.",
			"Streak's alive. Don't let it end on an easy day.",
			"You're not behind, you're mid-grind.",
		},
	})
}
