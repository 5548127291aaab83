package persona

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"reddit-persona/models"
)

// SubredditCount 는 커뮤니티별 활동 수다.
type SubredditCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopSubreddits 는 활동 수 내림차순(같으면 이름순)으로 커뮤니티를 정렬한다.
func TopSubreddits(records []models.ActivityRecord) []SubredditCount {
	counts := map[string]int{}
	for _, r := range records {
		sub := r.Subreddit
		if sub == "" {
			sub = "unknown"
		}
		counts[sub]++
	}
	out := make([]SubredditCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, SubredditCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func subredditNames(top []SubredditCount, n int) []string {
	var names []string
	for i, s := range top {
		if i >= n {
			break
		}
		names = append(names, s.Name)
	}
	return names
}

var interestKeywords = []struct {
	keyword  string
	interest string
}{
	{"gaming", "Video games and gaming culture"},
	{"technology", "Technology and tech news"},
	{"programming", "Software development and programming"},
	{"politics", "Political discussions and current events"},
	{"news", "Current events and news"},
	{"sports", "Sports and athletics"},
	{"music", "Music and musical discussions"},
	{"movies", "Films and cinema"},
	{"books", "Literature and reading"},
	{"science", "Scientific topics and research"},
	{"askreddit", "General discussions and Q&A"},
	{"funny", "Humor and entertainment"},
	{"pics", "Photography and visual content"},
	{"worldnews", "International news and events"},
	{"food", "Cooking, recipes, and food culture"},
}

// Interests maps the top five subreddits to likely interests.
func Interests(top []SubredditCount) []string {
	var interests []string
	for _, name := range subredditNames(top, 5) {
		lower := strings.ToLower(name)
		matched := false
		for _, k := range interestKeywords {
			if strings.Contains(lower, k.keyword) {
				interests = append(interests, k.interest)
				matched = true
				break
			}
		}
		if !matched {
			interests = append(interests, "Content related to r/"+name)
		}
	}
	return interests
}

// CommunicationStyle 는 최근 댓글 20개의 길이와 문장 부호 사용으로 말투를 요약한다.
func CommunicationStyle(comments []models.ActivityRecord) string {
	if len(comments) == 0 {
		return "No comments available for communication analysis"
	}
	sample := comments
	if len(sample) > 20 {
		sample = sample[:20]
	}

	total, questions, exclamations, caps := 0, 0, 0, 0
	for _, c := range sample {
		total += len([]rune(c.Body))
		if strings.Contains(c.Body, "?") {
			questions++
		}
		if strings.Contains(c.Body, "!") {
			exclamations++
		}
		if hasShoutedWord(c.Body) {
			caps++
		}
	}
	n := float64(len(sample))
	avg := float64(total) / n

	var traits []string
	switch {
	case avg > 200:
		traits = append(traits, "Tends to write detailed, lengthy responses")
	case avg < 50:
		traits = append(traits, "Prefers brief, concise communication")
	default:
		traits = append(traits, "Uses moderate-length responses")
	}
	if float64(questions) > n*0.3 {
		traits = append(traits, "Frequently asks questions and seeks engagement")
	}
	if float64(exclamations) > n*0.2 {
		traits = append(traits, "Expressive and enthusiastic in tone")
	}
	if float64(caps) > n*0.1 {
		traits = append(traits, "Occasionally uses emphasis (caps) for strong points")
	}
	return strings.Join(traits, ". ") + "."
}

func hasShoutedWord(s string) bool {
	for _, w := range strings.Fields(s) {
		letters, upper := 0, true
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
				if !unicode.IsUpper(r) {
					upper = false
				}
			}
		}
		if letters > 2 && upper {
			return true
		}
	}
	return false
}

// PostingPatterns summarizes the post/comment mix and average scores.
type PostingPatterns struct {
	ActivityLevel   string  `json:"activity_level"`
	ActivityType    string  `json:"activity_type"`
	AvgPostScore    float64 `json:"avg_post_score"`
	AvgCommentScore float64 `json:"avg_comment_score"`
}

func AnalyzePostingPatterns(posts, comments []models.ActivityRecord) PostingPatterns {
	total := len(posts) + len(comments)
	if total == 0 {
		return PostingPatterns{ActivityLevel: "No activity", ActivityType: "Unknown activity type"}
	}

	p := PostingPatterns{
		ActivityLevel:   fmt.Sprintf("Active user with %d total interactions", total),
		AvgPostScore:    averageScore(posts),
		AvgCommentScore: averageScore(comments),
	}
	switch ratio := float64(len(posts)) / float64(total); {
	case ratio > 0.7:
		p.ActivityType = "Content creator - prefers making posts over commenting"
	case ratio > 0.3:
		p.ActivityType = "Balanced user - mix of posts and comments"
	default:
		p.ActivityType = "Commenter - prefers engaging in discussions"
	}
	return p
}

func averageScore(records []models.ActivityRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.Score
	}
	return float64(sum) / float64(len(records))
}

// Describe 는 활동 패턴을 문장으로 표현한다.
func (p PostingPatterns) Describe() string {
	parts := []string{p.ActivityLevel, p.ActivityType}
	switch {
	case p.AvgPostScore > 10:
		parts = append(parts, "Posts tend to receive good engagement from the community")
	case p.AvgPostScore > 1:
		parts = append(parts, "Posts receive moderate community engagement")
	default:
		parts = append(parts, "Posts receive limited community engagement")
	}
	switch {
	case p.AvgCommentScore > 5:
		parts = append(parts, "Comments are generally well-received")
	case p.AvgCommentScore > 1:
		parts = append(parts, "Comments receive moderate appreciation")
	default:
		parts = append(parts, "Comments receive limited appreciation")
	}
	return strings.Join(parts, ". ") + "."
}

// FormatSentiment renders the profile as the SENTIMENT ANALYSIS section body.
func FormatSentiment(p models.SentimentProfile) string {
	lines := []string{p.Summary}
	if p.PositiveCount+p.NegativeCount > 0 {
		lines = append(lines, fmt.Sprintf("Sentiment breakdown: %d%% positive, %d%% negative sentiment words found",
			p.PositivePercent, p.NegativePercent))
	}
	if len(p.PositiveWords) > 0 {
		lines = append(lines, "Frequently uses positive words: "+strings.Join(firstN(p.PositiveWords, 5), ", "))
	}
	if len(p.PersonalityTraits) > 0 {
		lines = append(lines, "Communication traits: "+strings.Join(p.PersonalityTraits, ", "))
	}

	var positiveSubs []string
	for _, s := range sortedSubreddits(p.SubredditSentiment) {
		if p.SubredditSentiment[s].Sentiment == models.LabelPositive {
			positiveSubs = append(positiveSubs, "r/"+s)
		}
	}
	if len(positiveSubs) > 0 {
		lines = append(lines, "Most positive in: "+strings.Join(firstN(positiveSubs, 3), ", "))
	}
	lines = append(lines, fmt.Sprintf("Personality indicators: %s (%s)", p.MBTI.Summary, p.MBTI.Type))
	return strings.Join(lines, "\n")
}

// sortedSubreddits 는 댓글 수 내림차순, 같으면 이름순으로 정렬한다.
func sortedSubreddits(m map[string]models.SubredditSentiment) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := m[names[i]], m[names[j]]
		if a.Comments != b.Comments {
			return a.Comments > b.Comments
		}
		return names[i] < names[j]
	})
	return names
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

