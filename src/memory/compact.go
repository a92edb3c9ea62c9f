package memory

// Compactor trims a snapshot before it is handed to the reasoning engine.
// It never changes what is stored.
type Compactor interface {
	Compact(turns []Turn) []Turn
}

// CompactorFunc adapts a function to Compactor.
type CompactorFunc func(turns []Turn) []Turn

func (f CompactorFunc) Compact(turns []Turn) []Turn { return f(turns) }

// Unbounded keeps every turn.
var Unbounded Compactor = CompactorFunc(func(turns []Turn) []Turn { return turns })

// SlidingWindow keeps the most recent n turns. n <= 0 keeps everything.
// When the cut would start the window on an assistant turn, that turn is
// dropped too so the context opens with a user message.
func SlidingWindow(n int) Compactor {
	if n <= 0 {
		return Unbounded
	}
	return CompactorFunc(func(turns []Turn) []Turn {
		if len(turns) <= n {
			return turns
		}
		window := turns[len(turns)-n:]
		if len(window) > 1 && window[0].Role == RoleAssistant {
			window = window[1:]
		}
		return window
	})
}
