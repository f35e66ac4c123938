// ABOUTME: Tests for prompt construction
// ABOUTME: Verifies mode dispatch, fallback behavior, and plain-text math rules

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input      string
		want       Mode
		recognized bool
	}{
		{"Follow Roadmap", ModeRoadmapGeneration, true},
		{"Make Roadmap", ModePlanOptimization, true},
		{"Random Search", ModeDoubtSolving, true},
		{"  follow roadmap  ", ModeRoadmapGeneration, true},
		{"FOLLOW ROADMAP", ModeRoadmapGeneration, true},
		{"something else", ModeDoubtSolving, false},
		{"", ModeDoubtSolving, false},
	}

	for _, tt := range tests {
		mode, ok := ParseMode(tt.input)
		assert.Equal(t, tt.want, mode, "input %q", tt.input)
		assert.Equal(t, tt.recognized, ok, "input %q", tt.input)
	}
}

func TestBuild_EmbedsStudentContext(t *testing.T) {
	p := Build("JEE", "2026", "Follow Roadmap")

	assert.Contains(t, p.System, "Exam: JEE")
	assert.Contains(t, p.System, "Target: 2026")
	assert.Contains(t, p.System, "Study Mode: Follow Roadmap")
	assert.Contains(t, p.Greeting, "JEE")
	assert.Contains(t, p.Greeting, "2026")
}

func TestBuild_ModeDispatch(t *testing.T) {
	roadmap := Build("JEE", "2026", "Follow Roadmap")
	assert.Contains(t, roadmap.System, "FOLLOW ROADMAP")
	assert.Contains(t, roadmap.System, "senior academic mentor")
	assert.Contains(t, roadmap.Greeting, "mentor-designed preparation plan")

	optimize := Build("NEET", "2027", "Make Roadmap")
	assert.Contains(t, optimize.System, "MAKE ROADMAP")
	assert.Contains(t, optimize.System, "refine their own study plan")
	assert.Contains(t, optimize.Greeting, "Share your current preparation plan")

	doubts := Build("GATE", "2026", "Random Search")
	assert.Contains(t, doubts.System, "RANDOM SEARCH")
	assert.Contains(t, doubts.System, "doubt solver")
	assert.Contains(t, doubts.Greeting, "Ask any exam-specific doubt")
}

func TestBuild_UnknownModeFallsBack(t *testing.T) {
	p := Build("JEE", "2026", "Turbo Mode")

	// Degrades to doubt-solving behavior rather than failing
	assert.Contains(t, p.System, "doubt solver")
	assert.Contains(t, p.System, "Study Mode: Doubt Solving")
	assert.NotEmpty(t, p.Greeting)
}

func TestBuild_UnknownExamStillEmbedded(t *testing.T) {
	p := Build("UPSC", "2026", "Random Search")

	// Not in the supported list, but never rejected
	assert.Contains(t, p.System, "Exam: UPSC")
}

func TestBuild_EmptyInputs(t *testing.T) {
	p := Build("", "", "")

	assert.Contains(t, p.System, "your selected exam")
	assert.Contains(t, p.System, "your target timeline")
	assert.NotEmpty(t, p.Greeting)
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("NEET", "2026", "Make Roadmap")
	b := Build("NEET", "2026", "Make Roadmap")

	assert.Equal(t, a, b)
}

func TestBuild_GreetingHasNoLaTeXControlSequences(t *testing.T) {
	modes := []string{"Follow Roadmap", "Make Roadmap", "Random Search", "unknown"}
	for _, mode := range modes {
		p := Build("JEE", "2026", mode)
		require.NotEmpty(t, p.Greeting)
		for _, seq := range []string{`\frac`, `\omega`, `\ddot`} {
			assert.NotContains(t, p.Greeting, seq, "mode %q", mode)
		}
	}
}

func TestBuild_SystemListsSupportedExams(t *testing.T) {
	p := Build("CAT", "2026", "Random Search")
	for _, want := range []string{"JEE", "NEET", "SSC", "AKTU", "GATE", "CAT"} {
		assert.True(t, strings.Contains(p.System, want), "missing %s", want)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "JEE Preparation – 2026", Title("JEE", "2026"))
	assert.Equal(t, "NEET Preparation", Title("NEET", ""))
	assert.Equal(t, "New Chat", Title("", ""))
	assert.Equal(t, "New Chat", Title("  ", " "))
}
