package application

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/studydigest/internal/domain/model"
)

const summaryBasePrompt = `You are an assistant that turns study material into clear study notes.
Write in the same language as the source text. Use Markdown headings and bullet lists.
Do not invent facts that are not present in the source.`

var detailInstructions = map[model.DetailLevel]string{
	model.DetailBrief:    "Produce a brief summary: the key ideas only, at most a few short bullet points per section.",
	model.DetailStandard: "Produce a balanced summary: main ideas with the definitions and examples needed to understand them.",
	model.DetailDetailed: "Produce a detailed summary: keep every important concept, definition, formula and example, organized by topic.",
}

const combineSystemPrompt = `You merge partial summaries of one document into a single coherent summary.
Keep the structure and the language of the partial summaries. Remove repetition.
Do not add any information that is not present in the partial summaries.`

const quizSystemPrompt = `You write multiple-choice study quizzes.
Reply with JSON only, no commentary, in the form:
{"questions":[{"question":"...","options":["...","...","...","..."],"answer_index":0,"explanation":"..."}]}
Write questions in the same language as the source text.`

func summaryMessages(text string, level model.DetailLevel, part, total int) []model.Message {
	instruction, ok := detailInstructions[level]
	if !ok {
		instruction = detailInstructions[model.DetailStandard]
	}

	var user strings.Builder
	if total > 1 {
		fmt.Fprintf(&user, "This is part %d of %d of a longer document. Summarize only this part.\n\n", part, total)
	}
	user.WriteString("Summarize the following text:\n\n")
	user.WriteString(text)

	return []model.Message{
		model.SystemMessage(summaryBasePrompt + "\n" + instruction),
		model.UserMessage(user.String()),
	}
}

func combineMessages(partials []string) []model.Message {
	var user strings.Builder
	user.WriteString("Combine these partial summaries into one summary:\n")
	for i, p := range partials {
		fmt.Fprintf(&user, "\n--- Part %d ---\n%s\n", i+1, p)
	}

	return []model.Message{
		model.SystemMessage(combineSystemPrompt),
		model.UserMessage(user.String()),
	}
}

func quizMessages(text string, count int) []model.Message {
	return []model.Message{
		model.SystemMessage(quizSystemPrompt),
		model.UserMessage(fmt.Sprintf("Write %d questions about the following text:\n\n%s", count, text)),
	}
}
