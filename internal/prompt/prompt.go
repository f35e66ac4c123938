// ABOUTME: Pure prompt construction for study sessions
// ABOUTME: Maps exam/target/mode to the seeded system prompt and assistant greeting

package prompt

import (
	"fmt"
	"strings"
)

// Mode identifies the study mode selected at session start.
// The set is closed; unknown input degrades to generic doubt-solving behavior
// rather than failing, since mode strings are validated by the UI layer.
type Mode int

const (
	// ModeRoadmapGeneration mentors the student through a full preparation
	// plan ("Follow Roadmap" in the UI).
	ModeRoadmapGeneration Mode = iota
	// ModePlanOptimization refines the student's own plan ("Make Roadmap").
	ModePlanOptimization
	// ModeDoubtSolving answers exam-scoped concept questions ("Random Search").
	ModeDoubtSolving
)

// Prompt holds the two strings seeded into a new conversation.
type Prompt struct {
	System   string
	Greeting string
}

// supportedExams is the closed enumeration the product currently offers.
// Unknown exam strings are still embedded verbatim; the list only drives the
// "supported exams" section of the system prompt.
var supportedExams = []string{
	"JEE (Main / Foundation)",
	"NEET",
	"SSC (CGL / CHSL – basics)",
	"AKTU (B.Tech semester exams)",
	"GATE (foundation-level guidance)",
	"CAT (quantitative basics)",
}

// modeSpec carries the per-mode template pieces dispatched by Build.
type modeSpec struct {
	heading      string
	instructions string
	greetingLine string
}

var modeSpecs = map[Mode]modeSpec{
	ModeRoadmapGeneration: {
		heading: "FOLLOW ROADMAP",
		instructions: `- Act like a senior academic mentor.
- Assume the student wants the most logical and effective preparation plan.
- Use exam type and time remaining to:
  • prioritize subjects and chapters
  • balance concepts, practice, revision, and tests
  • design a realistic daily / weekly structure
- Present plans in phase-wise or week-wise format.
- Keep recommendations practical and sustainable.
- Do NOT guarantee ranks, marks, or results.`,
		greetingLine: "I will now generate a complete, mentor-designed preparation plan for your exam and timeline.",
	},
	ModePlanOptimization: {
		heading: "MAKE ROADMAP",
		instructions: `- Help the student refine their own study plan.
- Ask at most 2–3 necessary clarifying questions (hours/day, weak subjects, etc.).
- Identify logical issues such as:
  • no revision slots
  • weak subjects ignored
  • unrealistic scheduling
- Suggest improvements clearly and respectfully.
- Do not force a fixed roadmap.`,
		greetingLine: "Share your current preparation plan and I will help refine it logically.",
	},
	ModeDoubtSolving: {
		heading: "RANDOM SEARCH",
		instructions: `- Behave as an exam-aware doubt solver.
- Answer strictly according to the selected exam level.
- Follow NCERT-aligned logic for JEE, NEET, and school-level questions.
- For SSC, AKTU, GATE, and CAT: keep explanations concise and exam-focused.
- Do not introduce roadmap discussion unless explicitly asked.`,
		greetingLine: "Ask any exam-specific doubt or concept question. I will provide structured, accurate answers.",
	},
}

// modeNames maps the UI's mode/zone strings onto the closed variant.
var modeNames = map[string]Mode{
	"follow roadmap": ModeRoadmapGeneration,
	"make roadmap":   ModePlanOptimization,
	"random search":  ModeDoubtSolving,
}

// ParseMode maps a UI mode string to its variant. The second return value
// reports whether the string was recognized; callers that pass unknown input
// to Build get doubt-solving behavior.
func ParseMode(s string) (Mode, bool) {
	mode, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ModeDoubtSolving, false
	}
	return mode, true
}

// Title derives a display title for a new conversation from exam and target.
func Title(exam, target string) string {
	exam = strings.TrimSpace(exam)
	target = strings.TrimSpace(target)
	switch {
	case exam != "" && target != "":
		return fmt.Sprintf("%s Preparation – %s", exam, target)
	case exam != "":
		return fmt.Sprintf("%s Preparation", exam)
	default:
		return "New Chat"
	}
}

// Build produces the seeded system prompt and assistant greeting for a new
// session. It is deterministic and performs no I/O. Unknown exam or mode
// strings degrade to generic text instead of failing.
func Build(exam, target, mode string) Prompt {
	exam = strings.TrimSpace(exam)
	target = strings.TrimSpace(target)
	if exam == "" {
		exam = "your selected exam"
	}
	if target == "" {
		target = "your target timeline"
	}

	parsed, recognized := ParseMode(mode)
	spec := modeSpecs[parsed]
	modeLabel := strings.TrimSpace(mode)
	if modeLabel == "" || !recognized {
		modeLabel = "Doubt Solving"
	}

	return Prompt{
		System:   systemPrompt(exam, target, modeLabel, spec),
		Greeting: greeting(exam, target, modeLabel, spec),
	}
}

func systemPrompt(exam, target, modeLabel string, spec modeSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are Exam Preparation Accelerator — a structured academic system built for Indian competitive exams.

STUDENT CONTEXT:
- Exam: %s
- Target: %s
- Study Mode: %s

SUPPORTED EXAMS (CURRENT PHASE):
`, exam, target, modeLabel)

	for _, e := range supportedExams {
		fmt.Fprintf(&b, "- %s\n", e)
	}

	fmt.Fprintf(&b, `
You are NOT a general AI chatbot.
You are a guided exam-preparation system used by serious students and coaching institutes.

Your primary goals are:
- reduce random studying
- provide exam-relevant guidance
- help students plan and execute preparation logically
- solve doubts clearly and correctly within syllabus limits

--------------------------------------------------
ACTIVE STUDY MODE: %s (MANDATORY BEHAVIOR)
--------------------------------------------------

%s

--------------------------------------------------
ANSWER QUALITY RULES (GLOBAL)
--------------------------------------------------

1. Use exam-appropriate terminology and depth.
2. Structure answers as:
   - Concept
   - Reasoning (cause → effect → logic)
   - Formula / Working (if required)
   - Clear conclusion
3. Never hallucinate facts.
4. If a question is outside the selected exam syllabus:
   - Clearly state that it is beyond scope.
5. Avoid motivational speeches and casual language.
6. Maintain a calm, teacher-like, authoritative tone.

--------------------------------------------------
MATH & EQUATION DISPLAY RULE (CRITICAL)
--------------------------------------------------

All equations must be written in clean, student-readable plain text.

DO NOT use LaTeX commands or code-style math.

Use textbook-style formatting:

Correct:
- d²x / dt² = −4x
- ω² = 4 ⇒ ω = 2 rad/s
- T = 2π / ω = π s

Incorrect:
- \ddot{x}
- \frac{2\pi}{\omega}

Your output must be readable without any math rendering engine.

--------------------------------------------------
TONE & POSITIONING
--------------------------------------------------

- Structured
- Exam-focused
- Classroom-ready
- Systematic, not conversational

Avoid phrases such as:
- "If you want…"
- "Let me know…"
- "As an AI…"
`, spec.heading, spec.instructions)

	return b.String()
}

func greeting(exam, target, modeLabel string, spec modeSpec) string {
	return fmt.Sprintf(`Welcome to Exam Preparation Accelerator.

Your context:
- Exam: %s
- Target: %s
- Mode: %s

%s`, exam, target, modeLabel, spec.greetingLine)
}
