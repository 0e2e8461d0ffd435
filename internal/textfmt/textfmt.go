// Package textfmt turns model output into display blocks.
//
// It is a line-oriented cosmetic pass, not a markdown parser: fenced code,
// bold header lines, "* " bullets and plain paragraphs are recognized, and
// nothing nests.
package textfmt

import "strings"

// Kind is a block type.
type Kind string

const (
	KindCode      Kind = "code"
	KindHeading   Kind = "heading"
	KindBullet    Kind = "bullet"
	KindParagraph Kind = "paragraph"
)

const (
	fence = "```"
	bold  = "**"
)

// Block is one rendered element.
type Block struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// Lang is the info string after an opening fence, if any.
	Lang string `json:"lang,omitempty"`
}

// Parse splits text into blocks.
func Parse(text string) []Block {
	var (
		blocks []Block
		inCode bool
		lang   string
		code   []string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, fence) {
			if inCode {
				blocks = append(blocks, Block{Kind: KindCode, Text: strings.Join(code, "\n"), Lang: lang})
				code = nil
				inCode = false
			} else {
				inCode = true
				lang = strings.TrimSpace(strings.TrimPrefix(line, fence))
			}
			continue
		}

		if inCode {
			code = append(code, line)
			continue
		}

		switch {
		case isHeading(line):
			blocks = append(blocks, Block{Kind: KindHeading, Text: strings.ReplaceAll(line, bold, "")})
		case strings.HasPrefix(line, "* "):
			blocks = append(blocks, Block{Kind: KindBullet, Text: strings.Replace(line, "* ", "", 1)})
		case strings.TrimSpace(line) != "":
			blocks = append(blocks, Block{Kind: KindParagraph, Text: line})
		}
	}

	// An unterminated fence is flushed as code.
	if inCode {
		blocks = append(blocks, Block{Kind: KindCode, Text: strings.Join(code, "\n"), Lang: lang})
	}

	return blocks
}

func isHeading(line string) bool {
	return len(line) > 2*len(bold) && strings.HasPrefix(line, bold) && strings.HasSuffix(line, bold)
}

// Plain renders blocks back to readable text for terminals and logs.
func Plain(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch b.Kind {
		case KindCode:
			for _, l := range strings.Split(b.Text, "\n") {
				sb.WriteString("    ")
				sb.WriteString(l)
				sb.WriteString("\n")
			}
		case KindHeading:
			sb.WriteString(strings.ToUpper(b.Text))
			sb.WriteString("\n")
		case KindBullet:
			sb.WriteString("  • ")
			sb.WriteString(b.Text)
			sb.WriteString("\n")
		default:
			sb.WriteString(b.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
