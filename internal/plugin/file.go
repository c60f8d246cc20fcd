package plugin

// File is one unit of work flowing through a pipeline.
// Plugins treat files as values: a transform returns new File values or
// passes existing ones through, it never edits one in place.
type File struct {
	Path string         `json:"path"`
	Data []byte         `json:"data"`
	Map  map[string]any `json:"map"`
}

// Loaded reports whether the file carries content.
func (f File) Loaded() bool { return f.Data != nil }

// WithData returns a copy of f holding data.
func (f File) WithData(data []byte) File {
	f.Data = data
	return f
}

// Paths returns the path of every file, in order.
func Paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}
