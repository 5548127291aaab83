// Package lexicon scores free text against fixed word lists to produce a
// sentiment profile and lexical personality-dimension ratios.
package lexicon

// wordSet is a fixed lexicon. 모든 항목은 소문자 단일 단어다.
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

var (
	positiveWords = newWordSet(
		"good", "great", "awesome", "love", "like", "amazing", "excellent", "fantastic",
		"happy", "glad", "wonderful", "nice", "best", "perfect", "enjoy", "pleased",
		"impressive", "exciting", "brilliant", "beautiful", "helpful", "recommend",
	)
	negativeWords = newWordSet(
		"bad", "terrible", "hate", "awful", "horrible", "stupid", "worst", "sucks",
		"disappointed", "annoying", "poor", "disappointing", "useless", "waste",
		"frustrating", "ugly", "boring", "dumb", "sad", "angry", "disgusting",
	)

	enthusiasticWords = newWordSet("love", "amazing", "awesome", "fantastic", "incredible", "perfect", "brilliant")
	analyticalWords   = newWordSet("think", "consider", "analyze", "question", "perspective", "opinion", "view", "fact")
	skepticalWords    = newWordSet("doubt", "skeptical", "suspicious", "questionable", "unsure", "uncertain")
)

// dimension 은 성격 지표 한 축의 두 극이다. A 극 비율이 0.5 를 넘으면 LetterA 를 쓴다.
type dimension struct {
	LetterA, LetterB string
	LabelA, LabelB   string
	Balanced         string
	A, B             wordSet
}

var dimensions = [4]dimension{
	{
		LetterA: "E", LetterB: "I", LabelA: "Extrovert", LabelB: "Introvert", Balanced: "Balanced E/I",
		A: newWordSet(
			"party", "social", "people", "friends", "everyone", "group", "team", "community",
			"together", "share", "meet", "talk", "discuss", "outgoing", "network", "public",
		),
		B: newWordSet(
			"alone", "quiet", "myself", "solitude", "private", "personal", "individual", "focus",
			"concentrate", "read", "book", "home", "peace", "calm",
		),
	},
	{
		LetterA: "S", LetterB: "N", LabelA: "Sensing", LabelB: "Intuition", Balanced: "Balanced S/N",
		A: newWordSet(
			"fact", "detail", "specific", "practical", "concrete", "real", "actual", "evidence",
			"data", "number", "measure", "step", "procedure", "method", "experience", "example",
		),
		B: newWordSet(
			"idea", "concept", "theory", "possibility", "future", "imagine", "creative", "vision",
			"potential", "abstract", "pattern", "meaning", "symbolic", "innovative", "inspire",
		),
	},
	{
		LetterA: "T", LetterB: "F", LabelA: "Thinking", LabelB: "Feeling", Balanced: "Balanced T/F",
		A: newWordSet(
			"logic", "rational", "reason", "analysis", "objective", "fair", "truth", "fact",
			"efficient", "system", "principle", "criteria", "evaluate", "judge", "critical",
		),
		B: newWordSet(
			"feel", "emotion", "heart", "care", "love", "empathy", "compassion", "harmony",
			"value", "personal", "relationship", "support", "help", "understand", "appreciate",
		),
	},
	{
		LetterA: "J", LetterB: "P", LabelA: "Judging", LabelB: "Perceiving", Balanced: "Balanced J/P",
		A: newWordSet(
			"plan", "organize", "schedule", "deadline", "decision", "complete", "finish",
			"structure", "order", "control", "goal", "target", "achieve", "commit",
		),
		B: newWordSet(
			"flexible", "adapt", "spontaneous", "open", "explore", "option", "change",
			"maybe", "perhaps", "different", "variety", "freedom", "casual", "relax",
		),
	},
}
