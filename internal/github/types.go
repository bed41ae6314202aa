package github

// Issue is the subset of a GitHub issue the event pipeline consumes
type Issue struct {
	Owner  string
	Repo   string
	Number int

	Title string
	Body  string
	URL   string

	Author Author

	Labels []string
}

// Author identifies the user who opened an issue
type Author struct {
	Login string
	URL   string
}
