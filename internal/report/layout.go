// Package report lays out and renders a participant's result as a paginated
// PDF document. Coordinates are millimetres on an A4 portrait page.
package report

import (
	"fmt"

	"timed-quiz-platform/internal/domain"
)

const (
	Title = "Quiz Results"

	marginLeft  = 20.0
	optionLeft  = 25.0
	titleY      = 20.0
	nameY       = 35.0
	channelY    = 45.0
	scoreY      = 55.0
	bodyStartY  = 75.0
	pageBreakY  = 270.0
	pageStartY  = 20.0
	afterPrompt = 10.0
	optionStep  = 7.0
	afterOption = 10.0
	statusStep  = 7.0
	afterBlock  = 20.0
	// blockHeight is the distance from a block's prompt to its last line.
	blockHeight = afterPrompt + 3*optionStep + afterOption + statusStep

	titleSize  = 16.0
	headerSize = 12.0
	bodySize   = 10.0
)

// Color is an RGB text color.
type Color struct{ R, G, B int }

var (
	Black = Color{0, 0, 0}
	Green = Color{0, 128, 0}
	Red   = Color{255, 0, 0}
)

// Line is one positioned text run.
type Line struct {
	X, Y  float64
	Size  float64
	Color Color
	Text  string
}

// Page holds the lines drawn on one page.
type Page struct {
	Lines []Line
}

// Percentage returns score/total as a percentage, 0 when total is 0.
func Percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// Layout positions the header and one block per answer. A block that would
// end below the break line starts a new page.
func Layout(r domain.ParticipantReport) []Page {
	pages := []Page{{}}
	add := func(l Line) {
		p := &pages[len(pages)-1]
		p.Lines = append(p.Lines, l)
	}

	add(Line{X: marginLeft, Y: titleY, Size: titleSize, Color: Black, Text: Title})
	add(Line{X: marginLeft, Y: nameY, Size: headerSize, Color: Black, Text: "Name: " + r.Username})
	add(Line{X: marginLeft, Y: channelY, Size: headerSize, Color: Black, Text: "Channel: " + r.Channel})
	add(Line{X: marginLeft, Y: scoreY, Size: headerSize, Color: Black,
		Text: fmt.Sprintf("Score: %d/%d (%.1f%%)", r.Score, r.TotalQuestions, Percentage(r.Score, r.TotalQuestions))})

	y := bodyStartY
	for i, a := range r.Answers {
		if y+blockHeight > pageBreakY {
			pages = append(pages, Page{})
			y = pageStartY
		}

		add(Line{X: marginLeft, Y: y, Size: bodySize, Color: Black, Text: fmt.Sprintf("Q%d: %s", i+1, a.QuestionText)})
		y += afterPrompt

		options := []struct{ letter, text string }{
			{domain.LetterA, a.OptionA},
			{domain.LetterB, a.OptionB},
			{domain.LetterC, a.OptionC},
			{domain.LetterD, a.OptionD},
		}
		for j, o := range options {
			add(Line{X: optionLeft, Y: y, Size: bodySize, Color: Black, Text: o.letter + ") " + o.text})
			if j < len(options)-1 {
				y += optionStep
			}
		}
		y += afterOption

		status, color := "Wrong", Red
		if a.IsCorrect {
			status, color = "Correct", Green
		}
		add(Line{X: optionLeft, Y: y, Size: bodySize, Color: color, Text: fmt.Sprintf("Your Answer: %s - %s", a.SelectedAnswer, status)})
		add(Line{X: optionLeft, Y: y + statusStep, Size: bodySize, Color: color, Text: "Correct Answer: " + a.CorrectAnswer})
		y += afterBlock
	}
	return pages
}

// FileName is the suggested download name for a report.
func FileName(r domain.ParticipantReport) string {
	return r.Username + "_quiz_results.pdf"
}
