package memory

import "strings"

// KeywordClassifier is the default Classifier: deterministic, pure keyword
// membership over bilingual (zh/en) tables, no external calls.
//
// When several tables match, the first matching table in priority order
// wins: preference > emotion > fact > goal > relationship > conversation.
// Anything else is an event.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var preferenceKeywords = []string{
	"喜欢", "讨厌", "最爱", "不喜欢", "偏好", "爱吃", "爱喝", "爱玩",
	"favorite", "favourite", "prefer", "like", "love", "hate", "dislike", "enjoy",
}

var emotionKeywords = []string{
	"开心", "高兴", "难过", "伤心", "生气", "害怕", "焦虑", "孤独", "委屈", "兴奋",
	"happy", "sad", "angry", "afraid", "scared", "anxious", "lonely", "excited", "upset", "depressed",
}

var factKeywords = []string{
	"生日", "岁", "职业", "工作", "名字", "住在", "出生",
	"birthday", "years old", "my name", "occupation", "my job", "i work", "i live", "born in",
}

var goalKeywords = []string{
	"梦想", "目标", "想成为", "打算", "计划",
	"dream", "goal", "want to become", "plan to", "hope to",
}

var relationshipKeywords = []string{
	"朋友", "家人", "妈妈", "爸爸", "哥哥", "姐姐", "弟弟", "妹妹", "男朋友", "女朋友",
	"friend", "family", "mother", "father", "brother", "sister", "boyfriend", "girlfriend",
}

var conversationKeywords = []string{
	"聊过", "说过", "上次", "刚才", "今天聊",
	"we talked", "you said", "last time", "earlier you",
}

// highValueKeywords raise importance regardless of category. Each matched
// group adds 0.1 before clamping.
var highValueKeywords = [][]string{
	{"生日", "birthday"},
	{"职业", "工作", "occupation", "my job"},
	{"家人", "家庭", "family"},
	{"梦想", "dream"},
	{"目标", "goal"},
	{"爱好", "hobby"},
}

// Classify returns exactly one category for the text.
func (c *KeywordClassifier) Classify(text string) Category {
	lower := strings.ToLower(text)

	switch {
	case matchesAny(lower, preferenceKeywords):
		return CategoryPreference
	case matchesAny(lower, emotionKeywords):
		return CategoryEmotion
	case matchesAny(lower, factKeywords):
		return CategoryFact
	case matchesAny(lower, goalKeywords):
		return CategoryGoal
	case matchesAny(lower, relationshipKeywords):
		return CategoryRelationship
	case matchesAny(lower, conversationKeywords):
		return CategoryConversation
	default:
		return CategoryEvent
	}
}

// importanceBaseline maps each category to its starting importance.
var importanceBaseline = map[Category]float64{
	CategoryFact:         0.8,
	CategoryPreference:   0.7,
	CategoryGoal:         0.7,
	CategoryRelationship: 0.6,
	CategoryEmotion:      0.6,
	CategoryEvent:        0.5,
	CategoryConversation: 0.3,
}

// ScoreImportance returns the baseline for the category plus 0.1 per
// matched high-value keyword group, clamped to [0.1, 1.0].
func (c *KeywordClassifier) ScoreImportance(text string, category Category) float64 {
	score, ok := importanceBaseline[category]
	if !ok {
		score = 0.5
	}

	lower := strings.ToLower(text)
	for _, group := range highValueKeywords {
		if matchesAny(lower, group) {
			score += 0.1
		}
	}

	return ClampImportance(score)
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
