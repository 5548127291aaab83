package persona

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"reddit-persona/models"
)

const promptDataTemplate = `Analyze this Reddit user's activity and create a detailed persona:

Username: {{.Username}}
Posts analyzed: {{len .Posts}}
Comments analyzed: {{len .Comments}}

POST ACTIVITY SUMMARY:
{{- if .Posts}}
- Total posts: {{len .Posts}}
- Average score: {{printf "%.1f" .AvgPostScore}}
- Top subreddits: {{join .PostSubreddits ", "}}
- Sample titles: {{join .SampleTitles "; "}}
{{- else}}
No posts found.
{{- end}}

COMMENT ACTIVITY SUMMARY:
{{- if .Comments}}
- Total comments: {{len .Comments}}
- Average score: {{printf "%.1f" .AvgCommentScore}}
- Top subreddits: {{join .CommentSubreddits ", "}}
- Sample comments: {{join .SampleComments "; "}}
{{- else}}
No comments found.
{{- end}}

SENTIMENT SIGNALS:
- {{.Profile.Summary}}
- Positive/negative words: {{.Profile.PositiveCount}}/{{.Profile.NegativeCount}}
- Personality indicators: {{.Profile.MBTI.Type}}
{{- if .Profile.PersonalityTraits}}
- Traits: {{join .Profile.PersonalityTraits ", "}}
{{- end}}
`

const promptInstructions = `

Based on this data, create a comprehensive user persona that includes:
1. Communication style and tone
2. Main interests and topics
3. Personality traits
4. Online behavior patterns
5. Likely demographics

PERSONA:`

var promptTmpl = template.Must(template.New("personaPrompt").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(promptDataTemplate))

type promptData struct {
	Username          string
	Posts             []models.ActivityRecord
	Comments          []models.ActivityRecord
	AvgPostScore      float64
	AvgCommentScore   float64
	PostSubreddits    []string
	CommentSubreddits []string
	SampleTitles      []string
	SampleComments    []string
	Profile           models.SentimentProfile
}

// BuildPrompt 는 생성 모델에 넘길 프롬프트를 만든다.
// 데이터 부분만 maxChars 에 맞춰 자르고 지시문 꼬리는 항상 유지한다.
func BuildPrompt(in Input, maxChars int) (string, error) {
	posts, comments := models.SplitByKind(in.Records)
	data := promptData{
		Username:          in.Username,
		Posts:             posts,
		Comments:          comments,
		AvgPostScore:      averageScore(posts),
		AvgCommentScore:   averageScore(comments),
		PostSubreddits:    countedNames(TopSubreddits(posts), 5),
		CommentSubreddits: countedNames(TopSubreddits(comments), 5),
		Profile:           in.Profile,
	}
	for i, p := range posts {
		if i >= 5 {
			break
		}
		data.SampleTitles = append(data.SampleTitles, p.Title)
	}
	for i, c := range comments {
		if i >= 3 {
			break
		}
		data.SampleComments = append(data.SampleComments, truncateText(c.Body, 100))
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute persona prompt template: %w", err)
	}

	body := buf.String()
	if maxChars > 0 {
		budget := maxChars - len([]rune(promptInstructions))
		if budget < 0 {
			budget = 0
		}
		body = truncateText(body, budget)
	}
	return body + promptInstructions, nil
}

func countedNames(top []SubredditCount, n int) []string {
	var out []string
	for i, s := range top {
		if i >= n {
			break
		}
		out = append(out, fmt.Sprintf("%s (%d)", s.Name, s.Count))
	}
	return out
}

// truncateText 는 rune 기준으로 자르고 잘린 경우 "..." 를 붙인다.
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
