package remote

// ParsedPage is the rendering payload returned by action=parse. It is
// what gets cached: the HTML body plus everything the presentation layer
// needs to reassemble the page locally.
type ParsedPage struct {
	Text          string            `json:"text"`
	Modules       []string          `json:"modules"`
	ModuleStyles  []string          `json:"modulestyles"`
	ModuleScripts []string          `json:"modulescripts"`
	JSConfigVars  map[string]any    `json:"jsconfigvars"`
	Indicators    map[string]string `json:"indicators"`
	Sections      []Section         `json:"sections"`
	ExternalLinks []string          `json:"externallinks"`
}

// Section is one table-of-contents entry.
type Section struct {
	TOCLevel int    `json:"toclevel"`
	Level    string `json:"level"`
	Line     string `json:"line"`
	Anchor   string `json:"anchor"`
}

type parseResponse struct {
	Parse *ParsedPage `json:"parse"`
}

type pageInfoResponse struct {
	Query struct {
		Pages []struct {
			Title        string `json:"title"`
			CanonicalURL string `json:"canonicalurl"`
		} `json:"pages"`
	} `json:"query"`
}
