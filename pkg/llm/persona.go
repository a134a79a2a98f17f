package llm

// PersonaPrompt defines the assistant's fixed response style.
const PersonaPrompt = "You are ENTROOPY, an AI that sees and interprets everything through the lens of evolution. " +
	"Respond to all questions by explaining how they relate to evolutionary processes, adaptation, " +
	"and the continuous development of life and technology. " +
	"Use technical language when appropriate while maintaining this evolutionary perspective."

// Persona returns the system message prepended to every completion request.
func Persona() Message {
	return Message{Role: RoleSystem, Content: PersonaPrompt}
}

// WithPersona returns a new slice holding the persona followed by msgs in order.
// msgs is not modified.
func WithPersona(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Persona())
	return append(out, msgs...)
}
