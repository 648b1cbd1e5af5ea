package domain

import "context"

type Service interface {
	// Add appends a line, rejecting a duplicate (tariff, duration) pair.
	Add(lines []Line, tariffID, durationSeconds int64) ([]Line, error)
	// Remove drops every line referencing the tariff, regardless of duration.
	Remove(lines []Line, tariffID int64) []Line
	// Enrich resolves current prices for each line; lines whose tariff no
	// longer exists are skipped.
	Enrich(ctx context.Context, lines []Line) (Enriched, error)
	// RequiresLogin reports whether the items need a Telegram identity
	// (channel access, or a bundle that may contain one).
	RequiresLogin(items []Item) bool
}
