package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/yosuakev/learnful/internal/domain"
)

type identified interface {
	RecordID() string
}

// resolveID matches input against ids: exact match first, then a unique
// prefix. label names a record in error messages; match, when set, is tried
// between the two for case-insensitive name lookups.
func resolveID[E identified](items []E, input, label string, match func(E) bool) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%s id is required", label)
	}
	for _, it := range items {
		if it.RecordID() == input {
			return input, nil
		}
	}
	if match != nil {
		for _, it := range items {
			if match(it) {
				return it.RecordID(), nil
			}
		}
	}

	var matches []string
	for _, it := range items {
		if strings.HasPrefix(it.RecordID(), input) {
			matches = append(matches, it.RecordID())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", label, input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous %s id %q matches %d records", label, input, len(matches))
	}
}

func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	return resolveID(app.Gateways.Tasks.List(ctx, app.owner(ctx)), input, "task", nil)
}

// resolveGoal accepts a goal id, id prefix or exact title.
func resolveGoal(ctx context.Context, app *App, input string) (domain.LearningGoal, error) {
	goals := app.Gateways.Goals.List(ctx, app.owner(ctx))
	id, err := resolveID(goals, input, "goal", func(g domain.LearningGoal) bool {
		return strings.EqualFold(g.Title, strings.TrimSpace(input))
	})
	if err != nil {
		return domain.LearningGoal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.LearningGoal{}, fmt.Errorf("goal %q: %w", input, domain.ErrNotFound)
}

// resolveCategoryID accepts a category id, id prefix or exact name.
func resolveCategoryID(ctx context.Context, app *App, input string) (string, error) {
	return resolveID(app.Gateways.Categories.List(ctx, app.owner(ctx)), input, "category",
		func(c domain.Category) bool { return strings.EqualFold(c.Name, strings.TrimSpace(input)) })
}

func resolveEventID(ctx context.Context, app *App, input string) (string, error) {
	return resolveID(app.Gateways.Events.List(ctx, app.owner(ctx)), input, "event", nil)
}

func resolveSessionID(ctx context.Context, app *App, input string) (string, error) {
	return resolveID(app.Gateways.Sessions.List(ctx, app.owner(ctx)), input, "session", nil)
}
