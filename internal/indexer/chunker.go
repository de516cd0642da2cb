package indexer

import (
	"context"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
)

const languagePython = "python"

// Chunker splits Python source into semantic chunks using the tree-sitter AST.
//
// Top-level functions are preferred. A file without any falls back to its
// top-level classes, and a file with neither (or one that does not parse)
// becomes a single whole-file chunk.
type Chunker struct {
	grammar *sitter.Language
	tokens  TokenCounter
	logger  *zap.Logger
}

// NewChunker creates a chunker. A nil logger disables logging.
func NewChunker(tokens TokenCounter, logger *zap.Logger) *Chunker {
	if logger == nil {
		logger = zap.NewNop()
	}
	lang, _ := NewLanguageDetector().GetLanguage(languagePython)
	return &Chunker{
		grammar: lang.Grammar,
		tokens:  tokens,
		logger:  logger,
	}
}

// Chunk returns the ordered chunks of one file. filePath is the
// repo-relative path recorded on every chunk and mixed into its hash.
func (c *Chunker) Chunk(ctx context.Context, content, filePath string) []models.CodeChunk {
	filePath = strings.ReplaceAll(filePath, "\\", "/")

	spans := c.selectSpans(ctx, content, filePath)

	texts := make([]string, 0, len(spans))
	for _, s := range spans {
		if s = strings.TrimSpace(s); s != "" {
			texts = append(texts, s)
		}
	}

	name := path.Base(filePath)
	chunks := make([]models.CodeChunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.CodeChunk{
			FilePath:      filePath,
			FileName:      name,
			FileExtension: path.Ext(name),
			ChunkIndex:    i,
			TotalChunks:   len(texts),
			Content:       text,
			Language:      languagePython,
			TokenCount:    c.countTokens(text),
			ContentHash:   ContentHash(filePath, i, text),
		}
	}

	return chunks
}

// selectSpans picks the raw text of each candidate chunk
func (c *Chunker) selectSpans(ctx context.Context, content, filePath string) []string {
	src := []byte(content)

	root, err := sitter.ParseCtx(ctx, src, c.grammar)
	if err != nil || root == nil {
		c.logger.Debug("parse failed, using whole file", zap.String("file", filePath), zap.Error(err))
		return []string{content}
	}
	if root.HasError() {
		c.logger.Debug("syntax errors, using whole file", zap.String("file", filePath))
		return []string{content}
	}

	var functions, classes []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := definitionNode(root.NamedChild(i))
		if node == nil {
			continue
		}
		switch node.Type() {
		case "function_definition":
			functions = append(functions, node)
		case "class_definition":
			classes = append(classes, node)
		}
	}

	nodes := functions
	if len(nodes) == 0 {
		nodes = classes
	}
	if len(nodes) == 0 {
		return []string{content}
	}

	lines := strings.Split(content, "\n")
	spans := make([]string, 0, len(nodes))
	for _, node := range nodes {
		spans = append(spans, lineSpan(lines, int(node.StartPoint().Row), int(node.EndPoint().Row)))
	}
	return spans
}

// definitionNode unwraps a decorated definition. The chunk spans the
// def/class statement itself, starting below its decorators.
func definitionNode(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == "decorated_definition" {
		return node.ChildByFieldName("definition")
	}
	return node
}

// lineSpan joins source lines start..end inclusive
func lineSpan(lines []string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start:end+1], "\n")
}

func (c *Chunker) countTokens(text string) int {
	if c.tokens == nil {
		return 0
	}
	return c.tokens.Count(text)
}
