package sentiment

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

//go:embed lexicon.txt
var lexiconData string

const (
	negationScope   = 3
	intensifierGain = 1.5
	dampenerGain    = 0.5
	exclaimGain     = 1.1
	logisticSlope   = 1.5
)

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "without": {}, "hardly": {}, "barely": {},
	"cannot": {}, "dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {},
	"arent": {}, "werent": {}, "wont": {}, "wouldnt": {}, "shouldnt": {}, "cant": {},
	"couldnt": {}, "aint": {},
}

var intensifiers = map[string]float64{
	"very": intensifierGain, "really": intensifierGain, "so": intensifierGain,
	"extremely": 2, "incredibly": 2, "absolutely": 2, "totally": intensifierGain,
	"truly": intensifierGain, "super": intensifierGain, "most": intensifierGain,
	"slightly": dampenerGain, "somewhat": dampenerGain,
	"kinda": dampenerGain, "little": dampenerGain,
}

// Lexicon is a word-list classifier: token weights are summed with negation and
// intensifier handling and squashed through a logistic curve.
type Lexicon struct {
	weights map[string]float64
}

// NewLexicon parses the embedded word list.
func NewLexicon() (*Lexicon, error) {
	weights, err := parseLexicon(lexiconData)
	if err != nil {
		return nil, err
	}
	return &Lexicon{weights: weights}, nil
}

// Name identifies the classifier in logs and health reports.
func (l *Lexicon) Name() string { return ProviderLexicon }

// Classify never fails for a loaded lexicon; ctx is only checked for cancellation.
func (l *Lexicon) Classify(ctx context.Context, text string) (Prediction, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Prediction{}, err
		}
	}
	return l.score(text), nil
}

func (l *Lexicon) score(text string) Prediction {
	tokens := tokenize(text)

	var (
		total      float64
		negateLeft int
		boost      = 1.0
	)
	for _, tok := range tokens {
		if _, ok := negators[tok]; ok {
			negateLeft = negationScope
			continue
		}
		if gain, ok := intensifiers[tok]; ok {
			boost *= gain
			continue
		}

		weight, ok := l.weights[tok]
		if ok {
			weight *= boost
			if negateLeft > 0 {
				weight = -weight * 0.75
			}
			total += weight
		}
		boost = 1
		if negateLeft > 0 {
			negateLeft--
		}
	}

	if exclaims := strings.Count(text, "!"); exclaims > 0 {
		total *= math.Pow(exclaimGain, math.Min(float64(exclaims), 3))
	}

	p := 1 / (1 + math.Exp(-logisticSlope*total))
	if total >= 0 {
		return Prediction{Label: LabelPositive, Score: p}
	}
	return Prediction{Label: LabelNegative, Score: 1 - p}
}

// tokenize lowercases and splits on anything but letters, dropping apostrophes so
// "don't" matches "dont".
func tokenize(text string) []string {
	text = strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	text = strings.ReplaceAll(text, "'", "")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func parseLexicon(data string) (map[string]float64, error) {
	weights := make(map[string]float64)
	scanner := bufio.NewScanner(strings.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("sentiment: lexicon line %d: expected word and weight", line)
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("sentiment: lexicon line %d: %w", line, err)
		}
		weights[strings.ToLower(fields[0])] = weight
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("sentiment: lexicon is empty")
	}
	return weights, nil
}
