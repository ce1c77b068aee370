package validation

import "regexp"

// GitHubHandlePattern matches a syntactically valid GitHub handle.
var GitHubHandlePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,38}$`)

// GitHubHandle is the rule for a required GitHub handle.
var GitHubHandle = String{
	Required:  true,
	MinLength: Ptr(1),
	MaxLength: Ptr(39),
	Pattern:   GitHubHandlePattern,
}

// UsernameParams validates ?username= on the GitHub data endpoints.
var UsernameParams = Schema{
	{Name: "username", Rule: GitHubHandle},
}

// GenerateBody validates the profile/repos/languages bundle posted for synthesis.
var GenerateBody = Schema{
	{Name: "profile", Rule: Presence{Required: true, Type: TypeObject}},
	{Name: "repos", Rule: List{Required: true, MaxItems: Ptr(1000)}},
	{Name: "languages", Rule: Presence{Required: true, Type: TypeObject}},
}

// CompileBody validates LaTeX source posted for compilation.
var CompileBody = Schema{
	{Name: "latexContent", Rule: String{Required: true, MinLength: Ptr(100), MaxLength: Ptr(100000)}},
	{Name: "filename", Rule: String{MaxLength: Ptr(255)}},
}
