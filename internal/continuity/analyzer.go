// Package continuity scans an assembled scene sequence for ordering,
// repetition and character-reuse problems. Every rule pass runs over the full
// sequence; findings never short-circuit later passes.
package continuity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chrisgaborit/storyboard-engine/internal/types"
)

const (
	highPenalty   = 15
	mediumPenalty = 8
	lowPenalty    = 3

	teachLookback      = 3
	maxScenarioRun     = 2
	maxNameSceneSpread = 3
)

var commonNames = map[string]bool{
	"sarah": true, "john": true, "maria": true, "david": true, "alex": true,
	"priya": true, "james": true, "emma": true, "liam": true, "aisha": true,
	"carlos": true, "mei": true, "fatima": true, "tom": true, "anna": true,
}

// Adjacent purpose pairs that read as abrupt transitions.
var abruptTransitions = map[[2]string]bool{
	{types.PurposeAssessment, types.PurposeTeach}: true,
	{types.PurposePractice, types.PurposeTeach}:   true,
	{types.PurposeScenario, types.PurposeTeach}:   true,
}

// Analyze runs every continuity rule over the sequence and scores the result.
// When no scene carries an assessment purpose, a synthesized fallback
// assessment scene is appended to the returned sequence (a safety net, not an
// issue).
func Analyze(scenes []types.Scene) (types.ContinuityReport, []types.Scene) {
	issues := []types.ContinuityIssue{}
	issues = append(issues, sequenceIssues(scenes)...)
	issues = append(issues, repetitionIssues(scenes)...)
	issues = append(issues, characterIssues(scenes)...)
	issues = append(issues, transitionIssues(scenes)...)
	issues = append(issues, teachingFirstIssues(scenes)...)

	out := scenes
	if !hasAssessment(scenes) {
		out = append(append([]types.Scene{}, scenes...), fallbackAssessmentScene(len(scenes)))
	}

	score := 100
	regenerate := false
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityHigh:
			score -= highPenalty
			regenerate = true
		case types.SeverityMedium:
			score -= mediumPenalty
		case types.SeverityLow:
			score -= lowPenalty
		}
	}
	if score < 0 {
		score = 0
	}

	return types.ContinuityReport{
		Issues:               issues,
		OverallScore:         score,
		RequiresRegeneration: regenerate,
		Summary:              summarize(issues, score),
	}, out
}

// sequenceIssues: an example or scenario scene must be preceded by a teach
// scene within the previous 3 scenes.
func sequenceIssues(scenes []types.Scene) []types.ContinuityIssue {
	out := []types.ContinuityIssue{}
	for i, s := range scenes {
		if s.Purpose != types.PurposeExample && s.Purpose != types.PurposeScenario {
			continue
		}
		// The opening window belongs to the teaching-first rule.
		if i < teachLookback {
			continue
		}
		taught := false
		for j := i - 1; j >= 0 && j >= i-teachLookback; j-- {
			if scenes[j].Purpose == types.PurposeTeach {
				taught = true
				break
			}
		}
		if !taught {
			out = append(out, types.ContinuityIssue{
				Kind:           "pedagogical-sequence",
				Description:    fmt.Sprintf("%s scene %q has no teaching scene within the previous %d scenes", s.Purpose, s.Title, teachLookback),
				Severity:       types.SeverityHigh,
				SceneIndexes:   []int{i},
				Recommendation: "Introduce the concept in a teaching scene before applying it.",
				Evidence:       s.Purpose,
			})
		}
	}
	return out
}

// repetitionIssues: more than maxScenarioRun consecutive scenario scenes is
// one issue per run, including a run that ends the sequence.
func repetitionIssues(scenes []types.Scene) []types.ContinuityIssue {
	out := []types.ContinuityIssue{}
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		runLen := end - runStart
		if runLen > maxScenarioRun {
			indexes := make([]int, 0, runLen)
			for i := runStart; i < end; i++ {
				indexes = append(indexes, i)
			}
			out = append(out, types.ContinuityIssue{
				Kind:           "repetition",
				Description:    fmt.Sprintf("%d consecutive scenario scenes", runLen),
				Severity:       types.SeverityMedium,
				SceneIndexes:   indexes,
				Recommendation: "Break scenario runs up with teaching or practice scenes.",
			})
		}
		runStart = -1
	}
	for i, s := range scenes {
		if s.Purpose == types.PurposeScenario {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(scenes))
	return out
}

// characterIssues: any character name appearing in more than
// maxNameSceneSpread scenes is flagged once.
func characterIssues(scenes []types.Scene) []types.ContinuityIssue {
	sceneNames := map[string][]int{}
	for i, s := range scenes {
		for name := range namesIn(narrativeText(s)) {
			idxs := sceneNames[name]
			if len(idxs) == 0 || idxs[len(idxs)-1] != i {
				sceneNames[name] = append(idxs, i)
			}
		}
	}
	names := make([]string, 0, len(sceneNames))
	for name, idxs := range sceneNames {
		if len(idxs) > maxNameSceneSpread {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := []types.ContinuityIssue{}
	for _, name := range names {
		out = append(out, types.ContinuityIssue{
			Kind:           "character-repetition",
			Description:    fmt.Sprintf("character %q appears in %d scenes", name, len(sceneNames[name])),
			Severity:       types.SeverityMedium,
			SceneIndexes:   sceneNames[name],
			Recommendation: "Vary the cast so one character does not carry the whole storyboard.",
			Evidence:       name,
		})
	}
	return out
}

func transitionIssues(scenes []types.Scene) []types.ContinuityIssue {
	out := []types.ContinuityIssue{}
	for i := 1; i < len(scenes); i++ {
		pair := [2]string{scenes[i-1].Purpose, scenes[i].Purpose}
		if abruptTransitions[pair] {
			out = append(out, types.ContinuityIssue{
				Kind:           "abrupt-transition",
				Description:    fmt.Sprintf("abrupt transition from %s to %s", pair[0], pair[1]),
				Severity:       types.SeverityLow,
				SceneIndexes:   []int{i - 1, i},
				Recommendation: "Bridge the transition with a recap or framing line.",
			})
		}
	}
	return out
}

func teachingFirstIssues(scenes []types.Scene) []types.ContinuityIssue {
	limit := teachLookback
	if len(scenes) < limit {
		limit = len(scenes)
	}
	indexes := []int{}
	for i := 0; i < limit; i++ {
		if scenes[i].Purpose == types.PurposeTeach {
			return nil
		}
		indexes = append(indexes, i)
	}
	if len(indexes) == 0 {
		return nil
	}
	return []types.ContinuityIssue{{
		Kind:           "pedagogical-sequence",
		Description:    "none of the opening scenes teaches before application begins",
		Severity:       types.SeverityHigh,
		SceneIndexes:   indexes,
		Recommendation: "Open with a teaching scene that establishes the core concept.",
	}}
}

func hasAssessment(scenes []types.Scene) bool {
	for _, s := range scenes {
		if s.Purpose == types.PurposeAssessment {
			return true
		}
	}
	return false
}

func fallbackAssessmentScene(index int) types.Scene {
	return types.Scene{
		Index:           index,
		Title:           "Knowledge Check",
		Purpose:         types.PurposeAssessment,
		DurationSeconds: 75,
		Placeholder:     true,
		Draft: types.SceneDraft{
			Narration: "Before you finish, check your understanding of the key points covered in this module.",
			OnScreen:  types.OnScreenText{Title: "Knowledge Check", Body: "Answer the question to continue."},
			Visual:    types.VisualBrief{SceneDescription: "Question screen", Subject: "assessment prompt"},
			Assessment: &types.Assessment{
				Stem: "Which of the topics covered in this module applies to your role?",
				Options: []types.AssessmentOption{
					{Text: "The key concept introduced at the start", Correct: true},
					{Text: "An unrelated topic"},
					{Text: "None of the above"},
				},
				CorrectFeedback:   "Correct. Revisit any scene if you want a refresher.",
				IncorrectFeedback: "Not quite. Review the earlier scenes and try again.",
			},
		},
	}
}

func narrativeText(s types.Scene) string {
	parts := []string{
		s.Draft.Narration,
		s.Draft.OnScreen.Title,
		s.Draft.OnScreen.Body,
		strings.Join(s.Draft.OnScreen.Bullets, " "),
	}
	if s.Draft.Assessment != nil {
		parts = append(parts, s.Draft.Assessment.Stem)
	}
	return strings.Join(parts, " ")
}

// namesIn extracts character-name candidates: words from the common-name
// list, plus any capitalized word that does not open a sentence.
func namesIn(text string) map[string]bool {
	out := map[string]bool{}
	sentenceStart := true
	for _, word := range strings.Fields(text) {
		trimmed := strings.Trim(word, ".,!?;:\"'()[]")
		endsSentence := strings.ContainsAny(word, ".!?")
		if len(trimmed) < 3 {
			sentenceStart = endsSentence
			continue
		}
		lower := strings.ToLower(trimmed)
		if commonNames[lower] {
			out[lower] = true
		} else if !sentenceStart && isCapitalizedWord(trimmed) {
			out[lower] = true
		}
		sentenceStart = endsSentence
	}
	return out
}

func isCapitalizedWord(w string) bool {
	if w[0] < 'A' || w[0] > 'Z' {
		return false
	}
	for i := 1; i < len(w); i++ {
		c := w[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func summarize(issues []types.ContinuityIssue, score int) string {
	if len(issues) == 0 {
		return fmt.Sprintf("no continuity issues found (score %d)", score)
	}
	counts := map[types.Severity]int{}
	for _, i := range issues {
		counts[i.Severity]++
	}
	return fmt.Sprintf("%d issue(s): %d high, %d medium, %d low (score %d)",
		len(issues), counts[types.SeverityHigh], counts[types.SeverityMedium], counts[types.SeverityLow], score)
}
