package persona

import (
	"fmt"
	"strings"

	"reddit-persona/models"
)

// Templated builds the deterministic persona used when no model output is available.
// It never fails.
func Templated(in Input) string {
	posts, comments := models.SplitByKind(in.Records)
	top := TopSubreddits(in.Records)

	var b strings.Builder
	fmt.Fprintf(&b, "REDDIT USER PERSONA: %s\n\n", in.Username)

	b.WriteString("ACTIVITY OVERVIEW:\n")
	fmt.Fprintf(&b, "- Posts: %d\n", len(posts))
	fmt.Fprintf(&b, "- Comments: %d\n", len(comments))
	fmt.Fprintf(&b, "- Most active in: %s\n\n", strings.Join(subredditNames(top, 3), ", "))

	b.WriteString("INTERESTS:\n")
	b.WriteString("Based on subreddit activity, this user is interested in:\n")
	for _, interest := range Interests(top) {
		fmt.Fprintf(&b, "- %s\n", interest)
	}
	b.WriteString("\n")

	b.WriteString("COMMUNICATION STYLE:\n")
	b.WriteString(CommunicationStyle(comments))
	b.WriteString("\n\n")

	b.WriteString("ENGAGEMENT PATTERNS:\n")
	b.WriteString(AnalyzePostingPatterns(posts, comments).Describe())
	b.WriteString("\n\n")

	b.WriteString("SENTIMENT ANALYSIS:\n")
	b.WriteString(FormatSentiment(in.Profile))
	b.WriteString("\n")
	return b.String()
}
