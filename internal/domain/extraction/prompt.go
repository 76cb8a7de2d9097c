package extraction

import (
	"fmt"
	"strings"

	"github.com/felixbhw/n17-dash/internal/domain/news"
	"github.com/felixbhw/n17-dash/internal/domain/playerlink"
)

// ShapeHint is the JSON layout the oracle is asked to return.
const ShapeHint = `{
  "players": [{"name": "Full Player Name", "role": "current|target", "current_club": "Club Name"}],
  "transfer_status": "hearsay|rumors|developing|confirmed",
  "direction": "incoming|outgoing",
  "timeline_event": {"type": "rumor|bid|agreement|medical|official|news", "details": "one sentence", "confidence": 0},
  "related_clubs": [{"name": "Club Name", "role": "current|destination|interested"}],
  "transfer_type": "transfer|loan|loan_with_option|loan_with_obligation|unclear",
  "price": {"amount": 0, "currency": "GBP|EUR|USD"},
  "confidence": 0
}`

// Instructions builds the system instructions, including the journalist list.
func Instructions(deny Denylist) string {
	var b strings.Builder
	b.WriteString("You are a football transfer news analyst. Extract facts from the news item and ")
	b.WriteString("return one JSON object matching the given structure exactly. ")
	b.WriteString("Only include information that is explicitly mentioned or very strongly implied. ")
	b.WriteString("Use role \"current\" for players already at the club and \"target\" for players linked with a move. ")
	b.WriteString("Confidence is a number between 0 and 100. ")
	b.WriteString("Price amount is the reported fee as a plain number; use null when no fee is mentioned.\n")
	if deny.Len() > 0 {
		b.WriteString("The following are journalists or sources and must NOT be listed as players: ")
		b.WriteString(strings.Join(deny.Names(), ", "))
		b.WriteString(".\n")
	}
	return b.String()
}

// ContextText renders the news item and any known player state for the oracle.
func ContextText(item news.Item, existing []playerlink.PlayerLink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", item.Source)
	if item.Tier.Valid() {
		fmt.Fprintf(&b, "Source tier: %d (1 is most reliable, 4 least)\n", item.Tier)
	}
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(item.Title))
	if body := strings.TrimSpace(item.Body); body != "" {
		fmt.Fprintf(&b, "Content: %s\n", body)
	}
	if len(existing) > 0 {
		b.WriteString("Known players:\n")
		for _, link := range existing {
			fmt.Fprintf(&b, "- %s: %s", link.Name, link.Status)
			if link.Direction != playerlink.DirectionUnknown {
				fmt.Fprintf(&b, ", %s", link.Direction)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
