package trace

const (
	// CommentPrefix starts a comment; the rest of the line is ignored.
	CommentPrefix = "#"

	// Assign separates a result handle from the call producing it.
	Assign = "="

	// NullName denotes the null handle wherever a handle is accepted.
	NullName = "null"
)

// Operation keywords.
const (
	KeywordMalloc  = "malloc"
	KeywordCalloc  = "calloc"
	KeywordRealloc = "realloc"
	KeywordFree    = "free"
	KeywordFill    = "fill"
	KeywordExpect  = "expect"
	KeywordErrno   = "errno"
	KeywordCheck   = "check"
)
