package media

// Kind is the outcome of one media fetch
type Kind int

const (
	// NoMedia means the post carries nothing to download
	NoMedia Kind = iota
	// Fetched means one or more files were written to the media directory
	Fetched
	// FetchFailed means media exists but could not be retrieved
	FetchFailed
	// Inconclusive means the extractor finished cleanly without producing a file
	Inconclusive
)

func (k Kind) String() string {
	switch k {
	case NoMedia:
		return "no_media"
	case Fetched:
		return "fetched"
	case FetchFailed:
		return "fetch_failed"
	case Inconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Result is the uniform outcome of Dispatcher.Fetch
type Result struct {
	Kind Kind
	// Files are names inside the media directory, in display order
	Files []string
	// Strategy is the routing table entry that handled the post
	Strategy string
	// Err explains a FetchFailed outcome
	Err error
}

func noMedia() Result {
	return Result{Kind: NoMedia}
}

func fetched(files ...string) Result {
	return Result{Kind: Fetched, Files: files}
}

func failed(err error) Result {
	return Result{Kind: FetchFailed, Err: err}
}

func inconclusive() Result {
	return Result{Kind: Inconclusive}
}
