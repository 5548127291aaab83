package models

// Sentiment labels used for records and subreddits.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// SubredditSentiment 은 커뮤니티별 감성 집계다.
type SubredditSentiment struct {
	Sentiment string `bson:"sentiment" json:"sentiment"`
	Comments  int    `bson:"comments" json:"comments"`
	Positive  int    `bson:"positive" json:"positive"`
	Negative  int    `bson:"negative" json:"negative"`
}

// MBTIProfile holds the four personality dimension ratios and raw pole counts.
// 각 비율은 a/max(1, a+b) 이며 양쪽 모두 0 이면 0.5 이다.
type MBTIProfile struct {
	ExtrovertCount  int     `bson:"extrovert_count" json:"extrovert_count"`
	IntrovertCount  int     `bson:"introvert_count" json:"introvert_count"`
	ExtrovertRatio  float64 `bson:"extrovert_ratio" json:"extrovert_ratio"`
	SensingCount    int     `bson:"sensing_count" json:"sensing_count"`
	IntuitionCount  int     `bson:"intuition_count" json:"intuition_count"`
	SensingRatio    float64 `bson:"sensing_ratio" json:"sensing_ratio"`
	ThinkingCount   int     `bson:"thinking_count" json:"thinking_count"`
	FeelingCount    int     `bson:"feeling_count" json:"feeling_count"`
	ThinkingRatio   float64 `bson:"thinking_ratio" json:"thinking_ratio"`
	JudgingCount    int     `bson:"judging_count" json:"judging_count"`
	PerceivingCount int     `bson:"perceiving_count" json:"perceiving_count"`
	JudgingRatio    float64 `bson:"judging_ratio" json:"judging_ratio"`
	Type            string  `bson:"type" json:"type"`
	Summary         string  `bson:"summary" json:"summary"`
}

// SentimentProfile is the lexicon scorer output for one generation run.
type SentimentProfile struct {
	Summary            string                        `bson:"summary" json:"summary"`
	PositiveCount      int                           `bson:"positive_count" json:"positive_count"`
	NegativeCount      int                           `bson:"negative_count" json:"negative_count"`
	PositivePercent    int                           `bson:"positive_percent" json:"positive_percent"`
	NegativePercent    int                           `bson:"negative_percent" json:"negative_percent"`
	SentimentRatio     float64                       `bson:"sentiment_ratio" json:"sentiment_ratio"`
	PositiveWords      []string                      `bson:"positive_words" json:"positive_words"`
	NegativeWords      []string                      `bson:"negative_words" json:"negative_words"`
	SubredditSentiment map[string]SubredditSentiment `bson:"subreddit_sentiment" json:"subreddit_sentiment"`
	Samples            map[string][]string           `bson:"samples" json:"samples"`
	PersonalityTraits  []string                      `bson:"personality_traits" json:"personality_traits"`
	MBTI               MBTIProfile                   `bson:"mbti" json:"mbti"`
	RecordsAnalyzed    int                           `bson:"records_analyzed" json:"records_analyzed"`
}
