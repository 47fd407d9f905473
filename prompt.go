package hostui

import "sync"

// Prompter asks the user for a single line of input, like a blocking
// browser prompt. ok is false when the user cancelled.
type Prompter interface {
	Prompt(message, def string) (value string, ok bool)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(message, def string) (string, bool)

// Prompt calls f.
func (f PrompterFunc) Prompt(message, def string) (string, bool) {
	return f(message, def)
}

// StaticPrompter answers prompts from a script, in order. Once the answers
// run out every prompt is cancelled. The zero value cancels everything.
type StaticPrompter struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

// NewStaticPrompter returns a prompter that replies with answers in order.
func NewStaticPrompter(answers ...string) *StaticPrompter {
	return &StaticPrompter{answers: answers}
}

// Prompt records message and returns the next answer.
func (p *StaticPrompter) Prompt(message, def string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, message)
	if len(p.answers) == 0 {
		return "", false
	}
	next := p.answers[0]
	p.answers = p.answers[1:]
	return next, true
}

// Answer queues more answers.
func (p *StaticPrompter) Answer(answers ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, answers...)
}

// Asked returns the messages prompted so far.
func (p *StaticPrompter) Asked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}
