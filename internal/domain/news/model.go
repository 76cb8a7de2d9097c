package news

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the reliability ranking of a news source; lower is more reliable.
type Tier int

const (
	TierOne   Tier = 1
	TierTwo   Tier = 2
	TierThree Tier = 3
	TierFour  Tier = 4
)

// flairTiers maps r/coys link flairs to tiers.
var flairTiers = map[string]Tier{
	"Transfer News: Tier 1": TierOne,
	"Transfer News: Tier 2": TierTwo,
	"Transfer News: Tier 3": TierThree,
	"Tier: Here We Go!":     TierOne,
	"Transfer: News":        TierFour,
	"Transfer News":         TierFour,
}

// TierFromFlair returns the tier for a subreddit flair, false when the flair
// is not transfer related.
func TierFromFlair(flair string) (Tier, bool) {
	tier, ok := flairTiers[strings.TrimSpace(flair)]
	return tier, ok
}

func (t Tier) Valid() bool {
	return t >= TierOne && t <= TierFour
}

// Item is one piece of collected news. It is never mutated after creation;
// processed state lives in the repository.
type Item struct {
	ID        string
	Source    string
	URL       string
	Title     string
	Body      string
	Tier      Tier
	CreatedAt time.Time
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("news id is required")
	}
	if strings.TrimSpace(i.Title) == "" && strings.TrimSpace(i.Body) == "" {
		return fmt.Errorf("news %s needs a title or body", i.ID)
	}
	if i.Tier != 0 && !i.Tier.Valid() {
		return fmt.Errorf("invalid news tier: %d", i.Tier)
	}
	return nil
}

// Text is the content handed to the extractor.
func (i Item) Text() string {
	title := strings.TrimSpace(i.Title)
	body := strings.TrimSpace(i.Body)
	switch {
	case body == "":
		return title
	case title == "":
		return body
	default:
		return title + "\n\n" + body
	}
}

// WithBody returns a copy carrying a lazily fetched body.
func (i Item) WithBody(body string) Item {
	i.Body = body
	return i
}
