// Package chunker splits legal document text into ordered, token-bounded
// fragments with cross-fragment overlap. Splitting prefers legal structure
// markers (articles, sections, chapters) over paragraph breaks, paragraph
// breaks over sentence breaks, and only divides inside a sentence when a
// single sentence alone exceeds the token budget.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/caslex/caslex/internal/errclass"
)

// Config controls fragmenting behavior.
type Config struct {
	// MaxTokens bounds each fragment. The only tolerated overflow is a
	// single word that alone exceeds the budget.
	MaxTokens int
	// OverlapTokens is the context carried from the end of one fragment
	// into the start of the next, whole words only.
	OverlapTokens int
	// TokenizerModel selects the token counter, resolved once here.
	TokenizerModel string
	// PrimarySeparators are tried in priority order for the first split
	// pass; each separator stays attached to the text that follows it.
	PrimarySeparators []string
	// SecondarySeparators re-split segments that alone exceed MaxTokens.
	SecondarySeparators []string
}

// DefaultConfig returns the chunking defaults used for awards and statutes.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      512,
		OverlapTokens:  50,
		TokenizerModel: ModelHeuristic,
		PrimarySeparators: []string{
			"\nArticle ", "\nARTICLE ", "\nArt. ",
			"\nSection ", "\nSECTION ", "\n§",
			"\nChapter ", "\nCHAPTER ",
			"\n\n",
		},
		SecondarySeparators: []string{". ", "? ", "! ", "\n", "; "},
	}
}

// Validate checks the token budget invariant 0 ≤ overlap < max.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return errclass.NewChunkingFailure("max tokens must be positive")
	}
	if c.OverlapTokens < 0 || c.OverlapTokens >= c.MaxTokens {
		return errclass.NewChunkingFailure("overlap tokens must be in [0, max tokens)")
	}
	return nil
}

// Chunk is one bounded fragment of a parent document.
type Chunk struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Content  string `json:"content"`
	Page     int    `json:"page"`
	Position int    `json:"position"`
	Section  string `json:"section,omitempty"`
}

// Chunker fragments text under one immutable Config.
type Chunker struct {
	cfg Config
	tok Tokenizer
}

// New builds a Chunker, resolving the tokenizer once.
func New(cfg Config) (*Chunker, error) {
	if len(cfg.PrimarySeparators) == 0 {
		cfg.PrimarySeparators = DefaultConfig().PrimarySeparators
	}
	if len(cfg.SecondarySeparators) == 0 {
		cfg.SecondarySeparators = DefaultConfig().SecondarySeparators
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg, tok: ResolveTokenizer(cfg.TokenizerModel)}, nil
}

// Tokenizer exposes the resolved token counter.
func (c *Chunker) Tokenizer() Tokenizer { return c.tok }

// Fragment splits text into ordered fragments for one parent document.
// Empty input returns nil; text within the budget returns exactly one
// fragment carrying the trimmed text.
func (c *Chunker) Fragment(text, parentID string, page int, section string) []Chunk {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if page < 1 {
		page = 1
	}

	pieces := c.split(trimmed, 0)
	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			ID:       uuid.NewString(),
			ParentID: parentID,
			Content:  piece,
			Page:     page,
			Position: i,
			Section:  section,
		})
	}
	return chunks
}

// split levels: 0 primary separators, 1 secondary separators, 2 hard word
// split. Each level hands oversize segments down to the next.
func (c *Chunker) split(text string, level int) []string {
	if c.tok.Count(text) <= c.cfg.MaxTokens {
		return []string{text}
	}
	if level >= 2 {
		return c.hardSplit(text)
	}

	seps := c.cfg.PrimarySeparators
	if level == 1 {
		seps = c.cfg.SecondarySeparators
	}
	segments := splitKeepingSeparator(text, seps)
	if len(segments) < 2 {
		// No separator matched at this level; go finer.
		return c.split(text, level+1)
	}
	return c.assemble(segments, level)
}

// assemble grows a buffer segment by segment while the running token count
// stays within budget. Closing a buffer seeds the next one with the
// word-boundary overlap tail. Segments that alone exceed the budget are
// re-split one level finer under the same rule. A buffer holding nothing
// but its overlap seed is never emitted: that would duplicate content
// already present in the previous fragment.
func (c *Chunker) assemble(segments []string, level int) []string {
	var out []string
	var buf, seed string

	closeBuf := func() {
		closed := strings.TrimSpace(buf)
		if closed != "" && closed != seed {
			out = append(out, closed)
			seed = c.overlapTail(closed)
		}
		buf = seed
	}

	for _, seg := range segments {
		if c.tok.Count(seg) > c.cfg.MaxTokens {
			closeBuf()
			sub := c.split(strings.TrimSpace(seg), level+1)
			out = append(out, sub...)
			seed = c.overlapTail(out[len(out)-1])
			buf = seed
			continue
		}

		if buf != "" && c.tok.Count(buf+seg) > c.cfg.MaxTokens {
			closeBuf()
			if buf != "" && c.tok.Count(buf+seg) > c.cfg.MaxTokens {
				// Even the overlap seed leaves no room; sacrifice the
				// overlap rather than the budget.
				buf, seed = "", ""
			}
		}
		buf += seg
	}
	closeBuf()
	return out
}

// hardSplit divides on whitespace word boundaries, the last resort when a
// single sentence exceeds the budget. A lone word over the budget is
// emitted as-is: words are never cut.
func (c *Chunker) hardSplit(text string) []string {
	words := strings.Fields(text)
	var out []string
	var buf []string
	seedLen := 0

	for _, word := range words {
		candidate := strings.Join(append(buf, word), " ")
		if len(buf) > 0 && c.tok.Count(candidate) > c.cfg.MaxTokens {
			if len(buf) > seedLen {
				out = append(out, strings.Join(buf, " "))
				buf = strings.Fields(c.overlapTail(out[len(out)-1]))
				seedLen = len(buf)
			} else {
				// Nothing but overlap in the buffer; sacrifice it so the
				// word fits without breaking the budget.
				buf = nil
				seedLen = 0
			}
		}
		buf = append(buf, word)
	}
	if len(buf) > seedLen {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

// overlapTail walks backward word by word from the end of a closed
// fragment, accumulating whole words while the tail stays within the
// overlap budget. Words are never split.
func (c *Chunker) overlapTail(text string) string {
	if c.cfg.OverlapTokens <= 0 {
		return ""
	}
	words := strings.Fields(text)
	start := len(words)
	for start > 0 {
		candidate := strings.Join(words[start-1:], " ")
		if c.tok.Count(candidate) > c.cfg.OverlapTokens {
			break
		}
		start--
	}
	if start == len(words) {
		return ""
	}
	return strings.Join(words[start:], " ")
}

// splitKeepingSeparator splits on the first separator in the priority list
// that occurs in text, keeping the separator attached to the text that
// follows it.
func splitKeepingSeparator(text string, separators []string) []string {
	for _, sep := range separators {
		if sep == "" || !strings.Contains(text, sep) {
			continue
		}
		raw := strings.Split(text, sep)
		out := make([]string, 0, len(raw))
		for i, part := range raw {
			if i > 0 {
				part = sep + part
			}
			if strings.TrimSpace(part) == "" {
				continue
			}
			out = append(out, part)
		}
		if len(out) > 1 {
			return out
		}
	}
	return []string{text}
}
