package application

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultChunkTokens is the estimated-token budget per chunk.
const DefaultChunkTokens = 3000

// charsPerToken is the character-to-token ratio used by EstimateTokens.
const charsPerToken = 4

var paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// EstimateTokens approximates the token count of text as one token per four
// characters, rounded up. It is language-agnostic and tends to overestimate
// for Latin prose, which errs toward smaller chunks.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// ChunkText splits text into pieces whose estimated size fits maxTokens.
// Paragraphs are packed greedily; an oversized paragraph is split at sentence
// ends and an oversized sentence at whitespace. A single word longer than the
// budget becomes its own chunk. No non-whitespace character is dropped or
// duplicated.
func ChunkText(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkTokens
	}
	if EstimateTokens(text) <= maxTokens {
		return []string{strings.TrimSpace(text)}
	}

	budget := maxTokens * charsPerToken
	p := &packer{budget: budget, sep: "\n\n"}

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > budget {
			p.flush()
			p.chunks = append(p.chunks, splitParagraph(para, budget)...)
			continue
		}
		p.add(para)
	}
	p.flush()

	return p.chunks
}

func splitParagraph(para string, budget int) []string {
	p := &packer{budget: budget, sep: " "}
	for _, sentence := range splitSentences(para) {
		if utf8.RuneCountInString(sentence) > budget {
			p.flush()
			p.chunks = append(p.chunks, splitWords(sentence, budget)...)
			continue
		}
		p.add(sentence)
	}
	p.flush()
	return p.chunks
}

func splitWords(sentence string, budget int) []string {
	p := &packer{budget: budget, sep: " "}
	for _, word := range strings.Fields(sentence) {
		p.add(word)
	}
	p.flush()
	return p.chunks
}

// splitSentences breaks text after '.', '!' or '?' when followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + utf8.RuneLen(r)
		if end >= len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(next) {
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// packer greedily joins pieces into chunks of at most budget runes.
type packer struct {
	budget int
	sep    string
	buf    strings.Builder
	size   int
	chunks []string
}

func (p *packer) add(piece string) {
	n := utf8.RuneCountInString(piece)
	sepLen := utf8.RuneCountInString(p.sep)

	if p.size > 0 && p.size+sepLen+n > p.budget {
		p.flush()
	}
	if p.size > 0 {
		p.buf.WriteString(p.sep)
		p.size += sepLen
	}
	p.buf.WriteString(piece)
	p.size += n
}

func (p *packer) flush() {
	if p.size == 0 {
		return
	}
	p.chunks = append(p.chunks, p.buf.String())
	p.buf.Reset()
	p.size = 0
}
