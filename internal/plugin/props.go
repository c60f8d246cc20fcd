package plugin

// Props is the context threaded through a pipeline run.
// A runner never edits the Props it receives; it returns a new value.
type Props struct {
	Files    []File
	Reporter *Reporter
	Values   map[string]any

	// name binds LogMessage and LogFile to the running plugin.
	name string
}

// Value returns the extension value stored under key.
func (p Props) Value(key string) (any, bool) {
	v, ok := p.Values[key]
	return v, ok
}

// With returns a copy of p with key set to v.
func (p Props) With(key string, v any) Props {
	p.Values = mergeValues(p.Values, map[string]any{key: v})
	return p
}

// LogMessage emits a message event for the running plugin.
func (p Props) LogMessage(msg string) {
	p.Reporter.Emit(Event{Kind: EventMessage, Plugin: p.name, Message: msg})
}

// LogFile emits a file event for the running plugin.
func (p Props) LogFile(path string) {
	p.Reporter.Emit(Event{Kind: EventFile, Plugin: p.name, Path: path})
}

func (p Props) bind(name string) Props {
	p.name = name
	return p
}

// merge applies r on top of p: last writer wins per key, no deep merge.
func (p Props) merge(r Result) Props {
	out := p
	out.name = ""
	if r.Empty() {
		return out
	}
	if r.hasFiles {
		out.Files = r.files
	}
	if len(r.values) > 0 {
		out.Values = mergeValues(p.Values, r.values)
	}
	return out
}

func mergeValues(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Result is what a transform hands back to its runner.
// The zero value means nothing was returned and Props pass through unchanged.
type Result struct {
	files    []File
	hasFiles bool
	values   map[string]any
}

// FilesResult replaces the file collection.
func FilesResult(files []File) Result {
	return Result{files: files, hasFiles: true}
}

// ValuesResult merges values into Props.Values.
func ValuesResult(values map[string]any) Result {
	return Result{values: mergeValues(nil, values)}
}

// Set returns a copy of r that also merges key.
func (r Result) Set(key string, v any) Result {
	r.values = mergeValues(r.values, map[string]any{key: v})
	return r
}

// WithFiles returns a copy of r that also replaces the file collection.
func (r Result) WithFiles(files []File) Result {
	r.files = files
	r.hasFiles = true
	return r
}

// Empty reports whether r leaves Props unchanged.
func (r Result) Empty() bool { return !r.hasFiles && len(r.values) == 0 }
