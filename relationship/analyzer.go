package relationship

import (
	"regexp"
	"strings"
)

// Sentiment is the message's overall emotional direction.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// InteractionType buckets a message by its relational weight.
type InteractionType string

const (
	TypeRomantic  InteractionType = "romantic"
	TypeIntimate  InteractionType = "intimate"
	TypeDeep      InteractionType = "deep"
	TypeEmotional InteractionType = "emotional"
	TypeCasual    InteractionType = "casual"
)

// Quality buckets the overall interaction quality score.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityNormal    Quality = "normal"
	QualityPoor      Quality = "poor"
)

// Length / sharing / depth / frequency factor values.
const (
	LengthDetailed = "detailed"
	LengthBrief    = "brief"

	SharingHigh = "high"
	SharingLow  = "low"

	DepthDeep     = "deep"
	DepthModerate = "moderate"
	DepthSurface  = "surface"

	FrequencyFrequent   = "frequent"
	FrequencyOccasional = "occasional"
)

// QualityFactors are the individual signals behind the quality bucket.
type QualityFactors struct {
	Length         string
	PersonalShare  string
	EmotionalDepth string
	Frequency      string
	SpecialContent bool
}

// Analysis is the transient scoring of a single message. It is never
// persisted; the Machine consumes it once.
type Analysis struct {
	Sentiment          Sentiment
	InteractionType    InteractionType
	QualityFactors     QualityFactors
	Quality            Quality
	QualityScore       int
	Joyful             bool
	DetectedMilestones []Milestone
}

// Analyzer scores a single message against a prior state snapshot.
// Pluggable strategy: the default is keyword heuristics; an ML analyzer
// can replace it without touching the state machine.
type Analyzer interface {
	Analyze(text string, prior *State) *Analysis
}

// KeywordAnalyzer is the default heuristic Analyzer. Deterministic, pure,
// bilingual (zh/en) keyword tables.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer returns the default analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

var positiveKeywords = []string{
	"爱", "喜欢", "开心", "高兴", "棒", "谢谢", "哈哈", "可爱", "温柔", "想你",
	"love", "like", "happy", "great", "good", "thanks", "haha", "wonderful", "sweet", "awesome",
}

var negativeKeywords = []string{
	"讨厌", "生气", "难过", "烦", "无聊", "滚", "糟糕", "失望",
	"hate", "angry", "sad", "annoying", "boring", "terrible", "awful", "disappointed",
}

var romanticKeywords = []string{
	"爱你", "亲爱的", "想你", "喜欢你", "抱抱", "么么", "心动",
	"love you", "miss you", "darling", "sweetheart", "kiss", "crush on you",
}

var intimateKeywords = []string{
	"秘密", "只告诉你", "心里话", "悄悄话",
	"secret", "only you", "between us", "just us",
}

var deepKeywords = []string{
	"人生", "梦想", "未来", "意义", "恐惧", "死亡", "信仰",
	"life", "dream", "future", "meaning", "fear", "death", "believe in",
}

var emotionalKeywords = []string{
	"开心", "难过", "伤心", "孤独", "压力", "委屈", "感动",
	"happy", "sad", "lonely", "stressed", "upset", "touched", "emotional",
}

// deepEmotionKeywords measure emotional depth, not type.
var deepEmotionKeywords = []string{
	"爱", "恨", "孤独", "害怕", "心碎", "想念", "痛苦", "幸福",
	"love", "hate", "lonely", "afraid", "heartbroken", "longing", "suffering", "blissful",
}

var joyKeywords = []string{
	"开心", "高兴", "兴奋", "太棒", "哈哈", "幸福",
	"happy", "excited", "thrilled", "joy", "amazing", "yay",
}

var confessionKeywords = []string{
	"我爱你", "爱上你", "表白", "做我女朋友", "做我男朋友",
	"i love you", "in love with you", "be my girlfriend", "be my boyfriend",
}

var secretKeywords = []string{
	"秘密", "从来没告诉", "只告诉你",
	"secret", "never told anyone", "only telling you",
}

var promiseKeywords = []string{
	"约定", "答应我", "永远", "一辈子",
	"promise", "forever", "always be", "never leave",
}

// specialKeywords mark special moments that lift interaction quality.
var specialKeywords = []string{
	"第一次", "纪念日", "生日", "节日", "礼物", "庆祝",
	"first time", "anniversary", "birthday", "gift", "celebrate", "special day",
}

// disclosurePatterns spot first-person personal sharing.
var disclosurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi (feel|think|believe|am afraid|was|have never)\b`),
	regexp.MustCompile(`(?i)\bmy (family|dream|childhood|secret|past)\b`),
	regexp.MustCompile(`我(觉得|认为|其实|害怕|从来没|小时候)`),
	regexp.MustCompile(`我的(家人|梦想|童年|秘密|过去)`),
}

// Analyze scores text against the prior relationship snapshot.
func (a *KeywordAnalyzer) Analyze(text string, prior *State) *Analysis {
	lower := strings.ToLower(text)

	analysis := &Analysis{
		Sentiment:       detectSentiment(lower),
		InteractionType: detectType(lower),
		Joyful:          countHits(lower, joyKeywords) > 0,
	}
	analysis.QualityFactors = a.qualityFactors(text, lower, prior)
	analysis.QualityScore, analysis.Quality = scoreQuality(analysis.QualityFactors)
	analysis.DetectedMilestones = detectMilestones(lower, prior)

	return analysis
}

// detectSentiment compares positive and negative keyword hit counts;
// ties are neutral.
func detectSentiment(lower string) Sentiment {
	pos := countHits(lower, positiveKeywords)
	neg := countHits(lower, negativeKeywords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// detectType returns the first matching type in fixed priority order.
func detectType(lower string) InteractionType {
	switch {
	case hasAny(lower, romanticKeywords):
		return TypeRomantic
	case hasAny(lower, intimateKeywords):
		return TypeIntimate
	case hasAny(lower, deepKeywords):
		return TypeDeep
	case hasAny(lower, emotionalKeywords):
		return TypeEmotional
	default:
		return TypeCasual
	}
}

func (a *KeywordAnalyzer) qualityFactors(text, lower string, prior *State) QualityFactors {
	factors := QualityFactors{
		Length:         LengthBrief,
		PersonalShare:  SharingLow,
		EmotionalDepth: DepthSurface,
		Frequency:      FrequencyOccasional,
	}

	if len(text) > 50 {
		factors.Length = LengthDetailed
	}

	for _, pattern := range disclosurePatterns {
		if pattern.MatchString(text) {
			factors.PersonalShare = SharingHigh
			break
		}
	}

	switch hits := countHits(lower, deepEmotionKeywords); {
	case hits >= 2:
		factors.EmotionalDepth = DepthDeep
	case hits == 1:
		factors.EmotionalDepth = DepthModerate
	}

	if prior != nil && prior.TotalInteractions > 10 {
		factors.Frequency = FrequencyFrequent
	}

	factors.SpecialContent = hasAny(lower, specialKeywords)

	return factors
}

// scoreQuality converts factors into the 50-based score and its bucket.
func scoreQuality(f QualityFactors) (int, Quality) {
	score := 50
	if f.Length == LengthDetailed {
		score += 10
	}
	if f.PersonalShare == SharingHigh {
		score += 15
	}
	switch f.EmotionalDepth {
	case DepthDeep:
		score += 20
	case DepthModerate:
		score += 10
	}
	if f.SpecialContent {
		score += 15
	}
	if f.Frequency == FrequencyFrequent {
		score += 5
	}

	switch {
	case score >= 80:
		return score, QualityExcellent
	case score >= 65:
		return score, QualityGood
	case score >= 50:
		return score, QualityNormal
	default:
		return score, QualityPoor
	}
}

// detectMilestones evaluates each milestone pattern independently.
// first_meeting only fires on the very first interaction of the pair.
func detectMilestones(lower string, prior *State) []Milestone {
	var detected []Milestone

	if prior == nil || prior.TotalInteractions == 0 {
		detected = append(detected, MilestoneFirstMeeting)
	}
	if hasAny(lower, confessionKeywords) {
		detected = append(detected, MilestoneFirstConfession)
	}
	if hasAny(lower, secretKeywords) {
		detected = append(detected, MilestoneSecretSharing)
	}
	if hasAny(lower, promiseKeywords) {
		detected = append(detected, MilestonePromise)
	}

	return detected
}

func countHits(lower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

func hasAny(lower string, keywords []string) bool {
	return countHits(lower, keywords) > 0
}
