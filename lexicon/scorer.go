package lexicon

import (
	"fmt"
	"strings"
	"unicode"

	"reddit-persona/models"
)

const (
	// MaxMatchedWords bounds PositiveWords and NegativeWords.
	MaxMatchedWords = 20
	// MaxSamples 는 라벨별로 보관하는 예시 텍스트 수다.
	MaxSamples = 3
	// MaxSampleRunes 는 예시 텍스트의 최대 길이다.
	MaxSampleRunes = 200
)

// Score 는 레코드 목록으로 SentimentProfile 을 계산한다. 입출력이나 공유 상태가 없는 순수 함수다.
// 같은 단어는 한 레코드 안에서 여러 번 나와도 한 번만 센다.
func Score(records []models.ActivityRecord) models.SentimentProfile {
	profile := models.SentimentProfile{
		PositiveWords:      []string{},
		NegativeWords:      []string{},
		SubredditSentiment: map[string]models.SubredditSentiment{},
		Samples: map[string][]string{
			models.LabelPositive: {},
			models.LabelNegative: {},
			models.LabelNeutral:  {},
		},
		PersonalityTraits: []string{},
		RecordsAnalyzed:   len(records),
	}

	var enthusiastic, analytical, skeptical int
	var poles [len(dimensions)][2]int

	for _, rec := range records {
		text := rec.Text()
		tokens := Tokenize(text)
		seen := make(map[string]struct{}, len(tokens))

		pos, neg := 0, 0
		for _, tok := range tokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}

			if positiveWords.has(tok) {
				pos++
				profile.PositiveWords = appendDistinct(profile.PositiveWords, tok)
			}
			if negativeWords.has(tok) {
				neg++
				profile.NegativeWords = appendDistinct(profile.NegativeWords, tok)
			}
			if enthusiasticWords.has(tok) {
				enthusiastic++
			}
			if analyticalWords.has(tok) {
				analytical++
			}
			if skepticalWords.has(tok) {
				skeptical++
			}
			for i, dim := range dimensions {
				if dim.A.has(tok) {
					poles[i][0]++
				}
				if dim.B.has(tok) {
					poles[i][1]++
				}
			}
		}

		profile.PositiveCount += pos
		profile.NegativeCount += neg

		sub := rec.Subreddit
		if sub == "" {
			sub = "unknown"
		}
		agg := profile.SubredditSentiment[sub]
		agg.Comments++
		agg.Positive += pos
		agg.Negative += neg
		agg.Sentiment = Label(agg.Positive, agg.Negative)
		profile.SubredditSentiment[sub] = agg

		label := Label(pos, neg)
		if sample := strings.TrimSpace(text); sample != "" && len(profile.Samples[label]) < MaxSamples {
			profile.Samples[label] = append(profile.Samples[label], truncateRunes(sample, MaxSampleRunes))
		}
	}

	profile.PositivePercent, profile.NegativePercent = Percentages(profile.PositiveCount, profile.NegativeCount)
	profile.SentimentRatio = float64(profile.PositiveCount-profile.NegativeCount) / float64(max(1, profile.PositiveCount+profile.NegativeCount))

	n := float64(len(records))
	if float64(enthusiastic) > n*0.1 {
		profile.PersonalityTraits = append(profile.PersonalityTraits, "enthusiastic")
	}
	if float64(analytical) > n*0.15 {
		profile.PersonalityTraits = append(profile.PersonalityTraits, "analytical")
	}
	if float64(skeptical) > n*0.1 {
		profile.PersonalityTraits = append(profile.PersonalityTraits, "skeptical")
	}

	profile.Summary = summarize(profile.PositiveCount, profile.NegativeCount, profile.PersonalityTraits)
	profile.MBTI = buildMBTI(poles)
	return profile
}

// Label 은 긍정/부정 수로 우세 라벨을 정한다. 같으면 neutral 이다.
func Label(positive, negative int) string {
	switch {
	case positive > negative:
		return models.LabelPositive
	case negative > positive:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// Ratio returns a/max(1, a+b), or exactly 0.5 when both counts are zero.
func Ratio(a, b int) float64 {
	if a+b == 0 {
		return 0.5
	}
	return float64(a) / float64(a+b)
}

// Percentages 는 긍정 비율을 반올림하고 부정은 100 에서 뺀 값으로 맞춘다.
// 둘 다 0 이면 (0, 0) 이다.
func Percentages(positive, negative int) (int, int) {
	total := positive + negative
	if total <= 0 {
		return 0, 0
	}
	pos := (positive*100 + total/2) / total
	return pos, 100 - pos
}

// Tokenize splits text into lowercase words made of letters, digits and apostrophes.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := strings.Trim(b.String(), "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		b.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '\'' || r == '’':
			b.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func summarize(positive, negative int, traits []string) string {
	p, n := float64(positive), float64(negative)
	var summary string
	switch {
	case p > n*2:
		summary = "Consistently positive and optimistic in communication"
	case p > n*1.2:
		summary = "Generally positive in communication with occasional criticism"
	case n > p*2:
		summary = "Predominantly critical or negative in commentary"
	case n > p*1.2:
		summary = "Tends toward critical perspectives with some positive elements"
	default:
		summary = "Balanced emotional expression in comments"
	}
	if len(traits) > 0 {
		summary += fmt.Sprintf(". Displays %s tendencies.", strings.Join(traits, ", "))
	}
	return summary
}

func buildMBTI(poles [len(dimensions)][2]int) models.MBTIProfile {
	var ratios [len(dimensions)]float64
	var letters, labels []string
	for i, dim := range dimensions {
		r := Ratio(poles[i][0], poles[i][1])
		ratios[i] = r

		switch {
		case r > 0.5:
			letters = append(letters, dim.LetterA)
		case r < 0.5:
			letters = append(letters, dim.LetterB)
		default:
			letters = append(letters, "X")
		}

		switch {
		case r > 0.6:
			labels = append(labels, dim.LabelA)
		case r < 0.4:
			labels = append(labels, dim.LabelB)
		default:
			labels = append(labels, dim.Balanced)
		}
	}

	return models.MBTIProfile{
		ExtrovertCount:  poles[0][0],
		IntrovertCount:  poles[0][1],
		ExtrovertRatio:  ratios[0],
		SensingCount:    poles[1][0],
		IntuitionCount:  poles[1][1],
		SensingRatio:    ratios[1],
		ThinkingCount:   poles[2][0],
		FeelingCount:    poles[2][1],
		ThinkingRatio:   ratios[2],
		JudgingCount:    poles[3][0],
		PerceivingCount: poles[3][1],
		JudgingRatio:    ratios[3],
		Type:            strings.Join(letters, ""),
		Summary:         strings.Join(labels, " / "),
	}
}

func appendDistinct(words []string, w string) []string {
	if len(words) >= MaxMatchedWords {
		return words
	}
	for _, existing := range words {
		if existing == w {
			return words
		}
	}
	return append(words, w)
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
