package report

import (
	"bytes"
	"fmt"
	"testing"

	"timed-quiz-platform/internal/domain"
)

func sampleReport(n int) domain.ParticipantReport {
	r := domain.ParticipantReport{Username: "alice", Channel: "Morning", TotalQuestions: n}
	for i := 0; i < n; i++ {
		correct := i%2 == 0
		if correct {
			r.Score++
		}
		r.Answers = append(r.Answers, domain.AnswerDetail{
			QuestionText:   fmt.Sprintf("Question %d", i+1),
			OptionA:        "a",
			OptionB:        "b",
			OptionC:        "c",
			OptionD:        "d",
			CorrectAnswer:  "A",
			SelectedAnswer: map[bool]string{true: "A", false: "C"}[correct],
			IsCorrect:      correct,
		})
	}
	return r
}

func TestLayoutHeader(t *testing.T) {
	pages := Layout(sampleReport(0))
	if len(pages) != 1 || len(pages[0].Lines) != 4 {
		t.Fatalf("expected header-only page, got %+v", pages)
	}
	score := pages[0].Lines[3]
	if score.Y != scoreY || score.Text != "Score: 0/0 (0.0%)" {
		t.Fatalf("unexpected score line %+v", score)
	}
}

func TestLayoutBlockSpacing(t *testing.T) {
	pages := Layout(sampleReport(1))
	lines := pages[0].Lines[4:]
	wantY := []float64{75, 85, 92, 99, 106, 116, 123}
	if len(lines) != len(wantY) {
		t.Fatalf("expected %d body lines, got %d", len(wantY), len(lines))
	}
	for i, y := range wantY {
		if lines[i].Y != y {
			t.Fatalf("line %d (%q): y=%v want %v", i, lines[i].Text, lines[i].Y, y)
		}
	}
	if lines[5].Color != Green || lines[5].Text != "Your Answer: A - Correct" {
		t.Fatalf("unexpected status line %+v", lines[5])
	}
}

func TestLayoutPageBreaks(t *testing.T) {
	pages := Layout(sampleReport(10))
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	// Blocks start at 75, 133 and 191; one at 249 would end at 297.
	if got := len(pages[0].Lines); got != 4+3*7 {
		t.Fatalf("unexpected first page line count %d", got)
	}
	if got := len(pages[1].Lines); got != 4*7 {
		t.Fatalf("unexpected second page line count %d", got)
	}
	first := pages[2].Lines[0]
	if first.Y != pageStartY || first.Text != "Q8: Question 8" {
		t.Fatalf("expected Q8 at top of page 3, got %+v", first)
	}
	if pages[1].Lines[7].Color != Black {
		t.Fatalf("option lines must be black")
	}
}

func TestLayoutKeepsBlocksAbovePageBreak(t *testing.T) {
	for i, page := range Layout(sampleReport(40)) {
		for _, l := range page.Lines {
			if l.Y > pageBreakY {
				t.Fatalf("page %d: line %q at y=%v is past %v", i+1, l.Text, l.Y, pageBreakY)
			}
		}
	}
}

func TestScorePercentage(t *testing.T) {
	pages := Layout(sampleReport(3))
	if got := pages[0].Lines[3].Text; got != "Score: 2/3 (66.7%)" {
		t.Fatalf("unexpected score line %q", got)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleReport(12)); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf output")
	}
	if FileName(sampleReport(0)) != "alice_quiz_results.pdf" {
		t.Fatalf("unexpected file name")
	}
}
