// Package prompt renders chat conversations into the ChatML markup the
// Qwen model family is trained on, and extracts the completion text from
// raw model output.
package prompt

import "strings"

// ChatML turn markers. These must match the model's special tokens
// byte-for-byte; the server's prompt/response parity depends on it.
const (
	StartMarker = "<|im_start|>"
	EndMarker   = "<|im_end|>"
)

// Message is one conversation turn.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Render produces the flat prompt string for an ordered conversation.
// Each recognized turn becomes "<|im_start|><role>\n<content><|im_end|>\n";
// turns with any other role are dropped. The prompt always ends with an
// open assistant marker so the model continues from there.
func Render(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
			b.WriteString(StartMarker)
			b.WriteString(m.Role)
			b.WriteByte('\n')
			b.WriteString(m.Content)
			b.WriteString(EndMarker)
			b.WriteByte('\n')
		}
	}
	b.WriteString(StartMarker)
	b.WriteString(RoleAssistant)
	b.WriteByte('\n')
	return b.String()
}

// ExtractCompletion trims decoded model output down to the completion text.
// If the rendered prompt is a literal prefix of the output it is stripped;
// otherwise the output is kept whole. The prefix check is textual rather
// than token-based, so it can miss when special-token decoding does not
// round-trip exactly; that behavior is kept for compatibility with the
// clients of this server. All end-of-turn markers are removed and the
// result is whitespace-trimmed.
func ExtractCompletion(decoded, prompt string) string {
	text := decoded
	if prompt != "" && strings.HasPrefix(text, prompt) {
		text = text[len(prompt):]
	}
	text = strings.ReplaceAll(text, EndMarker, "")
	return strings.TrimSpace(text)
}
